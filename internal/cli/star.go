package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	starCmd := &cobra.Command{
		Use:   "star",
		Short: "Manage annotation trees",
	}

	langAddCmd := &cobra.Command{
		Use:   "lang-add [text]",
		Short: "Create an annotation-tree root",
		Args:  cobra.ExactArgs(1),
		Run:   runStarLangAdd,
	}

	langListCmd := &cobra.Command{
		Use:   "lang-list",
		Short: "List annotation-tree roots",
		Run:   runStarLangList,
	}

	langRmCmd := &cobra.Command{
		Use:   "lang-rm [id]",
		Short: "Delete a lang with all its nodes and texts",
		Args:  cobra.ExactArgs(1),
		Run:   runStarLangRm,
	}

	nodeAddCmd := &cobra.Command{
		Use:   "add [lang-id] [type]",
		Short: "Add a tree node (root when --parent is omitted)",
		Args:  cobra.ExactArgs(2),
		Run:   runStarAdd,
	}
	nodeAddCmd.Flags().Int64P("parent", "p", 0, "Parent star id")

	moveCmd := &cobra.Command{
		Use:   "move [id]",
		Short: "Re-parent a node (root when --parent is omitted)",
		Args:  cobra.ExactArgs(1),
		Run:   runStarMove,
	}
	moveCmd.Flags().Int64P("parent", "p", 0, "New parent star id")

	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a node with its subtree and texts",
		Args:  cobra.ExactArgs(1),
		Run:   runStarRm,
	}

	textCmd := &cobra.Command{
		Use:   "text [star-id] [text]",
		Short: "Attach a text entry to a node",
		Args:  cobra.ExactArgs(2),
		Run:   runStarText,
	}

	textRmCmd := &cobra.Command{
		Use:   "text-rm [id]",
		Short: "Delete a text entry",
		Args:  cobra.ExactArgs(1),
		Run:   runStarTextRm,
	}

	treeCmd := &cobra.Command{
		Use:   "tree [lang-id]",
		Short: "Show a lang's full tree with texts",
		Args:  cobra.ExactArgs(1),
		Run:   runStarTree,
	}

	flattenCmd := &cobra.Command{
		Use:   "flatten [lang-id]",
		Short: "Show a lang's tree as rows with type paths",
		Args:  cobra.ExactArgs(1),
		Run:   runStarFlatten,
	}

	starCmd.AddCommand(langAddCmd, langListCmd, langRmCmd, nodeAddCmd, moveCmd, rmCmd, textCmd, textRmCmd, treeCmd, flattenCmd)
	RootCmd.AddCommand(starCmd)
}

func runStarLangAdd(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	l, err := s.CreateLang(cmd.Context(), args[0])
	if err != nil {
		exitErr("create lang", err)
	}

	b, _ := json.MarshalIndent(l, "", "  ")
	fmt.Println(string(b))
}

func runStarLangList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	langs, err := s.ListLangs(cmd.Context())
	if err != nil {
		exitErr("list langs", err)
	}

	b, _ := json.MarshalIndent(langs, "", "  ")
	fmt.Println(string(b))
}

func runStarLangRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "star lang-rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteLang(cmd.Context(), id); err != nil {
		exitErr("delete lang", err)
	}
	fmt.Printf("deleted lang %d\n", id)
}

func runStarAdd(cmd *cobra.Command, args []string) {
	langID := parseID(args[0], "star add")
	parent, _ := cmd.Flags().GetInt64("parent")

	var parentID *int64
	if parent != 0 {
		parentID = &parent
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.CreateStarNode(cmd.Context(), langID, parentID, args[1])
	if err != nil {
		exitErr("create star node", err)
	}

	b, _ := json.MarshalIndent(n, "", "  ")
	fmt.Println(string(b))
}

func runStarMove(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "star move")
	parent, _ := cmd.Flags().GetInt64("parent")

	var parentID *int64
	if parent != 0 {
		parentID = &parent
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.MoveStarNode(cmd.Context(), id, parentID); err != nil {
		exitErr("move star node", err)
	}
	fmt.Printf("moved star %d\n", id)
}

func runStarRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "star rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteStarNode(cmd.Context(), id); err != nil {
		exitErr("delete star node", err)
	}
	fmt.Printf("deleted star %d\n", id)
}

func runStarText(cmd *cobra.Command, args []string) {
	starID := parseID(args[0], "star text")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	t, err := s.AddStarText(cmd.Context(), starID, args[1])
	if err != nil {
		exitErr("add star text", err)
	}

	b, _ := json.MarshalIndent(t, "", "  ")
	fmt.Println(string(b))
}

func runStarTextRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "star text-rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteStarText(cmd.Context(), id); err != nil {
		exitErr("delete star text", err)
	}
	fmt.Printf("deleted star text %d\n", id)
}

func runStarTree(cmd *cobra.Command, args []string) {
	langID := parseID(args[0], "star tree")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	roots, err := s.StarTree(cmd.Context(), langID)
	if err != nil {
		exitErr("star tree", err)
	}

	b, _ := json.MarshalIndent(map[string]interface{}{"roots": roots}, "", "  ")
	fmt.Println(string(b))
}

func runStarFlatten(cmd *cobra.Command, args []string) {
	langID := parseID(args[0], "star flatten")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rows, err := s.FlattenStars(cmd.Context(), langID)
	if err != nil {
		exitErr("star flatten", err)
	}

	b, _ := json.MarshalIndent(rows, "", "  ")
	fmt.Println(string(b))
}
