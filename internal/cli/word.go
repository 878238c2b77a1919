package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	wordCmd := &cobra.Command{
		Use:   "word",
		Short: "Manage words and their versions",
	}

	createCmd := &cobra.Command{
		Use:   "create [text]",
		Short: "Create a word (with version 1)",
		Args:  cobra.ExactArgs(1),
		Run:   runWordCreate,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List words with their latest version",
		Run:   runWordList,
	}

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one word and its versions",
		Args:  cobra.ExactArgs(1),
		Run:   runWordGet,
	}

	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a word and everything under it",
		Args:  cobra.ExactArgs(1),
		Run:   runWordRm,
	}

	versionCmd := &cobra.Command{
		Use:   "version [word-id]",
		Short: "Create a version for a word",
		Args:  cobra.ExactArgs(1),
		Run:   runWordVersion,
	}
	versionCmd.Flags().IntP("number", "n", 0, "Explicit version number (default: next)")

	versionRmCmd := &cobra.Command{
		Use:   "version-rm [version-id]",
		Short: "Delete a version with its child words and edges",
		Args:  cobra.ExactArgs(1),
		Run:   runWordVersionRm,
	}

	wordCmd.AddCommand(createCmd, listCmd, getCmd, rmCmd, versionCmd, versionRmCmd)
	RootCmd.AddCommand(wordCmd)
}

func runWordCreate(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	w, err := s.CreateWord(cmd.Context(), args[0])
	if err != nil {
		exitErr("create word", err)
	}
	v, err := s.EnsureVersion(cmd.Context(), w.ID)
	if err != nil {
		exitErr("create version", err)
	}

	out := map[string]interface{}{"word": w, "version": v}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

func runWordList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	words, err := s.ListWords(cmd.Context())
	if err != nil {
		exitErr("list words", err)
	}

	b, _ := json.MarshalIndent(words, "", "  ")
	fmt.Println(string(b))
}

func runWordGet(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "word get")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	w, err := s.GetWord(cmd.Context(), id)
	if err != nil {
		exitErr("get word", err)
	}
	versions, err := s.ListVersions(cmd.Context(), id)
	if err != nil {
		exitErr("list versions", err)
	}

	out := map[string]interface{}{"word": w, "versions": versions}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

func runWordRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "word rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteWord(cmd.Context(), id); err != nil {
		exitErr("delete word", err)
	}
	fmt.Printf("deleted word %d\n", id)
}

func runWordVersion(cmd *cobra.Command, args []string) {
	wordID := parseID(args[0], "word version")
	number, _ := cmd.Flags().GetInt("number")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var v interface{}
	if number > 0 {
		v, err = s.CreateVersion(cmd.Context(), wordID, number)
	} else {
		v, err = s.NextVersion(cmd.Context(), wordID)
	}
	if err != nil {
		exitErr("create version", err)
	}

	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func runWordVersionRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "word version-rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteVersion(cmd.Context(), id); err != nil {
		exitErr("delete version", err)
	}
	fmt.Printf("deleted version %d\n", id)
}
