package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kotenev/yokadi/internal/dump"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a project, task, or alias to the database",
	Long: `Add a row to the task database. The row reaches other replicas
on the next 'sync', which exports it into the dump and pushes it.`,
}

var addProjectCmd = &cobra.Command{
	Use:   "project <name>",
	Short: "Add a project",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		project := &dump.Project{
			UUID:         uuid.NewString(),
			Name:         args[0],
			Active:       true,
			CreationDate: time.Now().UTC(),
		}
		if err := e.database.UpsertProject(project); err != nil {
			fatal("adding project: %v", err)
		}
		fmt.Printf("%s Added project %s (%s)\n", color.GreenString("✓"), project.Name, project.UUID)
	},
}

var addTaskCmd = &cobra.Command{
	Use:   "task <project> <title>",
	Short: "Add a task to a project",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		urgency, _ := cmd.Flags().GetInt("urgency")

		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		project, err := findProjectByName(e, args[0])
		if err != nil {
			fatal("%v", err)
		}

		task := &dump.Task{
			UUID:         uuid.NewString(),
			ProjectUUID:  project.UUID,
			Title:        args[1],
			Status:       "new",
			Urgency:      urgency,
			CreationDate: time.Now().UTC(),
		}
		if err := e.database.UpsertTask(task); err != nil {
			fatal("adding task: %v", err)
		}
		fmt.Printf("%s Added task %s (%s)\n", color.GreenString("✓"), task.Title, task.UUID)
	},
}

var addAliasCmd = &cobra.Command{
	Use:   "alias <name> <command>",
	Short: "Add a command alias",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		e, err := openEngine()
		if err != nil {
			fatal("%v", err)
		}
		defer e.close()

		alias := &dump.Alias{
			UUID:    uuid.NewString(),
			Name:    args[0],
			Command: args[1],
		}
		if err := e.database.UpsertAlias(alias); err != nil {
			fatal("adding alias: %v", err)
		}
		fmt.Printf("%s Added alias %s\n", color.GreenString("✓"), alias.Name)
	},
}

// findProjectByName resolves a project name to its row
func findProjectByName(e *engine, name string) (*dump.Project, error) {
	projects, err := e.database.ListProjects()
	if err != nil {
		return nil, err
	}
	for _, project := range projects {
		if project.Name == name {
			return project, nil
		}
	}
	return nil, fmt.Errorf("no project named %q, create it with 'yokadi-sync add project %s'", name, name)
}

func init() {
	addTaskCmd.Flags().Int("urgency", 0, "task urgency")

	addCmd.AddCommand(addProjectCmd)
	addCmd.AddCommand(addTaskCmd)
	addCmd.AddCommand(addAliasCmd)
	rootCmd.AddCommand(addCmd)
}
