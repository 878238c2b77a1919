package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/b0risfosso/lang/internal/store"
)

func init() {
	writingCmd := &cobra.Command{
		Use:   "writing",
		Short: "Manage staged generation output",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List writings, newest first",
		Run:   runWritingList,
	}
	listCmd.Flags().Int64P("word", "w", 0, "Filter by parent word id")
	listCmd.Flags().StringP("prompt-type", "p", "", "Filter by prompt type")
	listCmd.Flags().IntP("limit", "l", 0, "Max results")

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one writing",
		Args:  cobra.ExactArgs(1),
		Run:   runWritingGet,
	}

	applyCmd := &cobra.Command{
		Use:   "apply [id]",
		Short: "Materialize a create_lang_words writing into the graph",
		Args:  cobra.ExactArgs(1),
		Run:   runWritingApply,
	}

	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Discard a writing without applying it",
		Args:  cobra.ExactArgs(1),
		Run:   runWritingRm,
	}

	writingCmd.AddCommand(listCmd, getCmd, applyCmd, rmCmd)
	RootCmd.AddCommand(writingCmd)
}

func runWritingList(cmd *cobra.Command, args []string) {
	wordID, _ := cmd.Flags().GetInt64("word")
	promptType, _ := cmd.Flags().GetString("prompt-type")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	writings, err := s.ListWritings(cmd.Context(), store.ListWritingsParams{
		WordID:     wordID,
		PromptType: promptType,
		Limit:      limit,
	})
	if err != nil {
		exitErr("list writings", err)
	}

	b, _ := json.MarshalIndent(writings, "", "  ")
	fmt.Println(string(b))
}

func runWritingGet(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "writing get")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	w, err := s.GetWriting(cmd.Context(), id)
	if err != nil {
		exitErr("get writing", err)
	}

	b, _ := json.MarshalIndent(w, "", "  ")
	fmt.Println(string(b))
}

func runWritingApply(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "writing apply")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	result, err := s.ApplyWriting(cmd.Context(), id)
	if err != nil {
		exitErr("apply writing", err)
	}

	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}

func runWritingRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "writing rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteWriting(cmd.Context(), id); err != nil {
		exitErr("delete writing", err)
	}
	fmt.Printf("deleted writing %d\n", id)
}
