package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkoskela/nakkikone/pkg/core/services"
)

// ListShiftsCmd creates the listShifts command
func ListShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listShifts <program_id>",
		Short: "List the shifts of a program with their free slot counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			programID := args[0]

			program, err := app.Store.GetProgram(app.Ctx, programID)
			if err != nil {
				return err
			}
			shifts, err := app.Store.GetShiftsByProgram(app.Ctx, programID)
			if err != nil {
				return err
			}

			fmt.Printf("\nProgram %s (event %s)\n\n", program.ID, program.EventID)
			if len(shifts) == 0 {
				fmt.Println("No shifts defined.")
				return nil
			}

			for _, shift := range shifts {
				free, err := services.AvailableSlots(app.Ctx, app.Store, app.Logger, shift.ID)
				if err != nil {
					return err
				}

				taskLabel := shift.TaskTypeID
				if taskType, err := app.Catalog.GetTaskType(app.Ctx, shift.TaskTypeID); err == nil {
					taskLabel = taskType.Name.FI
				}

				fmt.Printf("  %s  %s – %s  %-20s %d slots free\n",
					shift.ID,
					shift.Start.Format("2006-01-02 15:04"),
					shift.End.Format("15:04"),
					taskLabel,
					len(free),
				)
			}
			fmt.Println()

			return nil
		},
	}

	return cmd
}
