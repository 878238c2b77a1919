package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/b0risfosso/lang/internal/model"
	"github.com/b0risfosso/lang/internal/store"
)

func init() {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the async generation queue",
	}

	addCmd := &cobra.Command{
		Use:   "add [word-id] [task-type]",
		Short: "Enqueue a task for a word",
		Args:  cobra.ExactArgs(2),
		Run:   runTaskAdd,
	}
	addCmd.Flags().StringP("identifier", "i", "", "JSON identifier object")
	addCmd.Flags().StringP("payload", "p", "", "JSON payload object")
	addCmd.Flags().Bool("dedupe", false, "Skip when a queued or running task of this type already exists")

	claimCmd := &cobra.Command{
		Use:   "claim [id]",
		Short: "Claim a queued task (or the oldest one when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runTaskClaim,
	}

	completeCmd := &cobra.Command{
		Use:   "complete [id] [writing-id]",
		Short: "Mark a running task done with its result writing",
		Args:  cobra.ExactArgs(2),
		Run:   runTaskComplete,
	}

	failCmd := &cobra.Command{
		Use:   "fail [id] [message]",
		Short: "Mark a running task as failed",
		Args:  cobra.ExactArgs(2),
		Run:   runTaskFail,
	}

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		Run:   runTaskGet,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Run:   runTaskList,
	}
	listCmd.Flags().Int64P("word", "w", 0, "Filter by parent word id")
	listCmd.Flags().StringP("status", "s", "", "Filter by status (queued/running/done/error)")
	listCmd.Flags().IntP("limit", "l", 0, "Max results")

	taskCmd.AddCommand(addCmd, claimCmd, completeCmd, failCmd, getCmd, listCmd)
	RootCmd.AddCommand(taskCmd)
}

func runTaskAdd(cmd *cobra.Command, args []string) {
	wordID := parseID(args[0], "task add")
	identifier, _ := cmd.Flags().GetString("identifier")
	payload, _ := cmd.Flags().GetString("payload")
	dedupe, _ := cmd.Flags().GetBool("dedupe")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if dedupe {
		active, err := s.ActiveTask(cmd.Context(), wordID, args[1])
		if err != nil {
			exitErr("check active task", err)
		}
		if active != nil {
			b, _ := json.MarshalIndent(map[string]interface{}{"existing": active}, "", "  ")
			fmt.Println(string(b))
			return
		}
	}

	t, err := s.Enqueue(cmd.Context(), store.EnqueueParams{
		WordID:     wordID,
		TaskType:   args[1],
		Identifier: json.RawMessage(identifier),
		Payload:    json.RawMessage(payload),
	})
	if err != nil {
		exitErr("enqueue task", err)
	}

	b, _ := json.MarshalIndent(t, "", "  ")
	fmt.Println(string(b))
}

func runTaskClaim(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var t *model.Task
	if len(args) == 1 {
		t, err = s.Claim(cmd.Context(), parseID(args[0], "task claim"))
	} else {
		t, err = s.ClaimNext(cmd.Context())
	}
	if err != nil {
		exitErr("claim task", err)
	}
	if t == nil {
		fmt.Println("queue is empty")
		return
	}

	b, _ := json.MarshalIndent(t, "", "  ")
	fmt.Println(string(b))
}

func runTaskComplete(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "task complete")
	writingID := parseID(args[1], "task complete")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Complete(cmd.Context(), id, writingID); err != nil {
		exitErr("complete task", err)
	}
	fmt.Printf("task %d done (writing %d)\n", id, writingID)
}

func runTaskFail(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "task fail")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Fail(cmd.Context(), id, args[1]); err != nil {
		exitErr("fail task", err)
	}
	fmt.Printf("task %d failed: %s\n", id, args[1])
}

func runTaskGet(cmd *cobra.Command, args []string) {
	id := parseID(args[0], "task get")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	t, err := s.GetTask(cmd.Context(), id)
	if err != nil {
		exitErr("get task", err)
	}

	b, _ := json.MarshalIndent(t, "", "  ")
	fmt.Println(string(b))
}

func runTaskList(cmd *cobra.Command, args []string) {
	wordID, _ := cmd.Flags().GetInt64("word")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	tasks, err := s.ListTasks(cmd.Context(), store.ListTasksParams{
		WordID: wordID,
		Status: status,
		Limit:  limit,
	})
	if err != nil {
		exitErr("list tasks", err)
	}

	b, _ := json.MarshalIndent(tasks, "", "  ")
	fmt.Println(string(b))
}
