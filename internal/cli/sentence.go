package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	sentenceCmd := &cobra.Command{
		Use:   "sentence",
		Short: "Manage sentences composed of word ids",
	}

	addCmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Create a sentence",
		Args:  cobra.ExactArgs(1),
		Run:   runSentenceAdd,
	}
	addCmd.Flags().StringP("words", "w", "", "Comma-separated word ids, in order (required)")
	addCmd.MarkFlagRequired("words")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sentences",
		Run:   runSentenceList,
	}
	listCmd.Flags().IntP("limit", "l", 0, "Max results")

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one sentence with its child sentences",
		Args:  cobra.ExactArgs(1),
		Run:   runSentenceGet,
	}

	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a sentence and its child sentences",
		Args:  cobra.ExactArgs(1),
		Run:   runSentenceRm,
	}

	childCmd := &cobra.Command{
		Use:   "child [sentence-id] [text]",
		Short: "Add a child sentence",
		Args:  cobra.ExactArgs(2),
		Run:   runSentenceChild,
	}
	childCmd.Flags().StringP("child-words", "c", "", "Comma-separated child word ids, in order (required)")
	childCmd.MarkFlagRequired("child-words")

	sentenceCmd.AddCommand(addCmd, listCmd, getCmd, rmCmd, childCmd)
	RootCmd.AddCommand(sentenceCmd)
}

func runSentenceAdd(cmd *cobra.Command, args []string) {
	wordsStr, _ := cmd.Flags().GetString("words")
	wordIDs := parseIDList(wordsStr, "sentence add")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sent, err := s.CreateSentence(cmd.Context(), wordIDs, args[0])
	if err != nil {
		exitErr("create sentence", err)
	}

	b, _ := json.MarshalIndent(sent, "", "  ")
	fmt.Println(string(b))
}

func runSentenceList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sentences, err := s.ListSentences(cmd.Context(), limit)
	if err != nil {
		exitErr("list sentences", err)
	}

	b, _ := json.MarshalIndent(sentences, "", "  ")
	fmt.Println(string(b))
}

func runSentenceGet(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "sentence get")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sent, err := s.GetSentence(cmd.Context(), id)
	if err != nil {
		exitErr("get sentence", err)
	}
	children, err := s.ListChildSentences(cmd.Context(), id)
	if err != nil {
		exitErr("list child sentences", err)
	}

	out := map[string]interface{}{"sentence": sent, "child_sentences": children}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

func runSentenceRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "sentence rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteSentence(cmd.Context(), id); err != nil {
		exitErr("delete sentence", err)
	}
	fmt.Printf("deleted sentence %d\n", id)
}

func runSentenceChild(cmd *cobra.Command, args []string) {
	sentenceID := parseID(args[0], "sentence child")
	childStr, _ := cmd.Flags().GetString("child-words")
	childIDs := parseIDList(childStr, "sentence child")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	cs, err := s.CreateChildSentence(cmd.Context(), sentenceID, childIDs, args[1])
	if err != nil {
		exitErr("create child sentence", err)
	}

	b, _ := json.MarshalIndent(cs, "", "  ")
	fmt.Println(string(b))
}
