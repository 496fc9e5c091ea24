package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkoskela/nakkikone/pkg/core/services"
)

// OccupancyCmd creates the occupancy command
func OccupancyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "occupancy <shift_id>",
		Short: "Show the slot-by-slot occupancy of a shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := services.Occupancy(app.Ctx, app.Store, app.Directory, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Println()
			for _, entry := range entries {
				holder := "free"
				if entry.VolunteerID != "" {
					holder = entry.VolunteerName
					if holder == "" {
						holder = entry.VolunteerID
					}
					if entry.Comment != "" {
						holder = fmt.Sprintf("%s (%s)", holder, entry.Comment)
					}
				}
				fmt.Printf("  %s – %s  %s\n",
					entry.Slot.Start.Format("15:04"),
					entry.Slot.End.Format("15:04"),
					holder,
				)
			}
			fmt.Println()

			return nil
		},
	}
}
