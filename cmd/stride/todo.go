// ABOUTME: Todo commands for creating, editing, filtering and completing tasks
// ABOUTME: Todos are scoped to the current user and addressed by short id prefixes

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/storage"
	"github.com/harper/stride/internal/ui"
	"github.com/spf13/cobra"
)

var todoCmd = &cobra.Command{
	Use:     "todo",
	Aliases: []string{"t"},
	Short:   "Manage todos",
	Long: `Create and manage scheduled todos.

Examples:
  stride todo add "Morning run" --category Running --date 2024-12-15 --start 07:00
  stride todo add "Paint fence" --category Other --custom Chores
  stride todo list --status pending
  stride todo done 3f2a9c1e
  stride todo rm 3f2a9c1e --confirm`,
}

var todoAddCmd = &cobra.Command{
	Use:     "add <title>",
	Aliases: []string{"a"},
	Short:   "Add a todo",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]
		if err := models.ValidateTitle(title); err != nil {
			return err
		}

		category, _ := cmd.Flags().GetString("category")
		custom, _ := cmd.Flags().GetString("custom")
		date, _ := cmd.Flags().GetString("date")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		description, _ := cmd.Flags().GetString("description")

		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		startAt, endAt, err := models.ParseSchedule(date, start, end, time.Local)
		if err != nil {
			return err
		}

		todo := models.NewTodo(userID, title, models.ResolveCategory(category, custom), startAt, endAt)
		todo.Description = strings.TrimSpace(description)
		if err := repo.CreateTodo(todo); err != nil {
			return fmt.Errorf("failed to create todo: %w", err)
		}

		color.Green("✓ Added todo %s", todo.Title)
		fmt.Println(ui.FormatTodo(todo))
		return nil
	},
}

var todoEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a todo",
	Long: `Edit a todo's title, category, schedule or description.

Only the flags you pass are changed.

Examples:
  stride todo edit 3f2a9c1e --title "Evening run"
  stride todo edit 3f2a9c1e --date 2024-12-16 --start 18:00 --end 19:00`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todo, err := storage.FindTodo(repo, userID, args[0])
		if err != nil {
			return fmt.Errorf("todo '%s' not found: %w", args[0], err)
		}

		flags := cmd.Flags()
		if flags.Changed("title") {
			title, _ := flags.GetString("title")
			if err := models.ValidateTitle(title); err != nil {
				return err
			}
			todo.Title = title
		}
		if flags.Changed("category") || flags.Changed("custom") {
			category, _ := flags.GetString("category")
			custom, _ := flags.GetString("custom")
			if category == "" {
				category = models.CategoryOther
			}
			todo.Category = models.ResolveCategory(category, custom)
		}
		if flags.Changed("description") {
			description, _ := flags.GetString("description")
			todo.Description = strings.TrimSpace(description)
		}
		if flags.Changed("date") || flags.Changed("start") || flags.Changed("end") {
			date, _ := flags.GetString("date")
			start, _ := flags.GetString("start")
			end, _ := flags.GetString("end")
			local := todo.StartTime.In(time.Local)
			if date == "" {
				date = local.Format("2006-01-02")
			}
			if start == "" {
				start = local.Format("15:04")
			}
			if end == "" && !flags.Changed("start") {
				end = todo.EndTime.In(time.Local).Format("15:04")
			}
			startAt, endAt, err := models.ParseSchedule(date, start, end, time.Local)
			if err != nil {
				return err
			}
			todo.StartDate, todo.StartTime = startAt, startAt
			todo.EndDate, todo.EndTime = endAt, endAt
		}
		todo.UpdatedAt = time.Now()

		if err := repo.UpdateTodo(todo); err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}

		color.Green("✓ Updated todo")
		fmt.Println(ui.FormatTodo(todo))
		return nil
	},
}

var todoListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List todos",
	Long: `List your todos ordered by start time.

Examples:
  stride todo list
  stride todo list --query run
  stride todo list --status completed --category Yoga`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		status, _ := cmd.Flags().GetString("status")
		category, _ := cmd.Flags().GetString("category")

		switch status {
		case "", models.StatusAll, models.StatusCompleted, models.StatusPending:
		default:
			return fmt.Errorf("invalid status %q (use all, completed, or pending)", status)
		}

		todos, err := repo.ListTodosByUser(userID)
		if err != nil {
			return fmt.Errorf("failed to list todos: %w", err)
		}
		todos = models.FilterTodos(todos, models.TodoFilter{Query: query, Status: status, Category: category})

		if len(todos) == 0 {
			fmt.Println("No todos found.")
			return nil
		}
		for _, todo := range todos {
			fmt.Println(ui.FormatTodo(todo))
		}
		return nil
	},
}

var todoDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a todo completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTodoStatus(args[0], true)
	},
}

var todoUndoCmd = &cobra.Command{
	Use:   "undo <id>",
	Short: "Mark a todo pending again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTodoStatus(args[0], false)
	},
}

func setTodoStatus(ref string, completed bool) error {
	todo, err := storage.FindTodo(repo, userID, ref)
	if err != nil {
		return fmt.Errorf("todo '%s' not found: %w", ref, err)
	}
	todo.SetStatus(completed)
	if err := repo.UpdateTodo(todo); err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	color.Green("✓ Marked %s as %s", todo.Title, todo.Status())
	return nil
}

var todoRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a todo",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todo, err := storage.FindTodo(repo, userID, args[0])
		if err != nil {
			return fmt.Errorf("todo '%s' not found: %w", args[0], err)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !confirmTyped(fmt.Sprintf("Remove todo '%s'? [y/N] ", todo.Title), "y", "yes") {
			fmt.Println("Canceled.")
			return nil
		}

		if err := repo.DeleteTodo(todo.ID); err != nil {
			return fmt.Errorf("failed to remove todo: %w", err)
		}
		color.Green("✓ Removed todo %s", todo.Title)
		return nil
	},
}

func addScheduleFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("category", "c", "", "category (Running, Cycling, Yoga, Design, Other)")
	cmd.Flags().String("custom", "", "custom category text when --category is Other")
	cmd.Flags().StringP("date", "d", "", "day of the todo (YYYY-MM-DD, default today)")
	cmd.Flags().String("start", "", "start time (HH:MM, default 09:00)")
	cmd.Flags().String("end", "", "end time (HH:MM, default one hour after start)")
	cmd.Flags().String("description", "", "longer description")
}

func init() {
	addScheduleFlags(todoAddCmd)
	addScheduleFlags(todoEditCmd)
	todoEditCmd.Flags().String("title", "", "new title")

	todoListCmd.Flags().StringP("query", "q", "", "filter by title text")
	todoListCmd.Flags().StringP("status", "s", "", "filter by status (all, completed, pending)")
	todoListCmd.Flags().StringP("category", "c", "", "filter by category")

	todoRmCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	todoCmd.AddCommand(todoAddCmd, todoEditCmd, todoListCmd, todoDoneCmd, todoUndoCmd, todoRmCmd)
	rootCmd.AddCommand(todoCmd)
}
