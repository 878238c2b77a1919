package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	childCmd := &cobra.Command{
		Use:   "child",
		Short: "Manage free-text child words under a version",
	}

	addCmd := &cobra.Command{
		Use:   "add [version-id] [word]",
		Short: "Add an orbiting phrase to a version",
		Args:  cobra.ExactArgs(2),
		Run:   runChildAdd,
	}
	addCmd.Flags().StringP("link", "l", "", "Optional link (URL or cross-reference)")

	updateCmd := &cobra.Command{
		Use:   "update [id] [word]",
		Short: "Replace a child word's text and link",
		Args:  cobra.ExactArgs(2),
		Run:   runChildUpdate,
	}
	updateCmd.Flags().StringP("link", "l", "", "Optional link")

	moveCmd := &cobra.Command{
		Use:   "move [id] [to-version-id]",
		Short: "Move a child word under another version",
		Args:  cobra.ExactArgs(2),
		Run:   runChildMove,
	}

	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a child word",
		Args:  cobra.ExactArgs(1),
		Run:   runChildRm,
	}

	childCmd.AddCommand(addCmd, updateCmd, moveCmd, rmCmd)
	RootCmd.AddCommand(childCmd)
}

func runChildAdd(cmd *cobra.Command, args []string) {
	versionID := parseID(args[0], "child add")
	link, _ := cmd.Flags().GetString("link")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := s.AddChildWord(cmd.Context(), versionID, args[1], link)
	if err != nil {
		exitErr("add child word", err)
	}

	b, _ := json.MarshalIndent(c, "", "  ")
	fmt.Println(string(b))
}

func runChildUpdate(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "child update")
	link, _ := cmd.Flags().GetString("link")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.UpdateChildWord(cmd.Context(), id, args[1], link); err != nil {
		exitErr("update child word", err)
	}
	fmt.Printf("updated child word %d\n", id)
}

func runChildMove(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "child move")
	toVersionID := parseID(args[1], "child move")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.MoveChildWord(cmd.Context(), id, toVersionID); err != nil {
		exitErr("move child word", err)
	}
	fmt.Printf("moved child word %d to version %d\n", id, toVersionID)
}

func runChildRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "child rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteChildWord(cmd.Context(), id); err != nil {
		exitErr("delete child word", err)
	}
	fmt.Printf("deleted child word %d\n", id)
}
