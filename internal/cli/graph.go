package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	edgeCmd := &cobra.Command{
		Use:   "edge [version-id] [child-word-id]",
		Short: "Link a parent version to a word",
		Args:  cobra.ExactArgs(2),
		Run:   runEdgeAdd,
	}

	childrenCmd := &cobra.Command{
		Use:   "children [version-id]",
		Short: "List a version's child words and linked words",
		Args:  cobra.ExactArgs(1),
		Run:   runChildren,
	}

	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Show root words with versions, child words, and linked words",
		Run:   runTree,
	}

	RootCmd.AddCommand(edgeCmd, childrenCmd, treeCmd)
}

func runEdgeAdd(cmd *cobra.Command, args []string) {
	versionID := parseID(args[0], "edge")
	childWordID := parseID(args[1], "edge")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	e, err := s.AddEdge(cmd.Context(), versionID, childWordID)
	if err != nil {
		exitErr("add edge", err)
	}

	b, _ := json.MarshalIndent(e, "", "  ")
	fmt.Println(string(b))
}

func runChildren(cmd *cobra.Command, args []string) {
	versionID := parseID(args[0], "children")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	vc, err := s.ListChildren(cmd.Context(), versionID)
	if err != nil {
		exitErr("list children", err)
	}

	b, _ := json.MarshalIndent(vc, "", "  ")
	fmt.Println(string(b))
}

func runTree(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	roots, err := s.WriteTree(cmd.Context())
	if err != nil {
		exitErr("tree", err)
	}

	b, _ := json.MarshalIndent(map[string]interface{}{"roots": roots}, "", "  ")
	fmt.Println(string(b))
}
