package main

import (
	"fmt"
	"strconv"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/db"
	"mayday/coordinator/internal/jobs"
	"mayday/coordinator/internal/models/dtos"
	"mayday/coordinator/internal/services"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.AutoMigrate(app.orm); err != nil {
				return err
			}
			fmt.Println("Schema is up to date")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var (
		name, email, password, phone, role string
	)
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a coordinator or authority account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dtos.RegisterUserReq{Name: name, Email: email, Password: password}
			if phone != "" {
				req.PhoneNumber = &phone
			}

			users := services.NewUserService(app.orm, services.NewStatusReconciler(app.orm, nil), common.NopSink{})
			user, err := users.CreateWithRole(app.ctx, req, constants.UserRole(role))
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Printf("Created user %d (%s) with role %s\n", user.ID, user.Email, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (8-72 characters)")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&role, "role", string(constants.RoleAuthority), "Role: VC or AUTHORITY")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func closeEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close-event <event-id>",
		Short: "Resolve an event and complete all of its active volunteers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid event id %q", args[0])
			}

			reconciler := services.NewStatusReconciler(app.orm, nil)
			locations := services.NewLocationService(app.orm, nil, common.NopSink{})
			volunteers := services.NewVolunteerService(app.orm, reconciler, common.NopSink{}, nil)
			events := services.NewEventService(app.orm, locations, volunteers, common.NopSink{})

			out, err := events.Close(app.ctx, uint(id))
			if err != nil {
				return err
			}
			fmt.Printf("Event %d resolved, %d volunteers completed\n", out.Event.ID, out.Updated)
			return nil
		},
	}
}

func reconcileUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile-users",
		Short: "Recompute every user's status from their active assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job := jobs.NewReconcileJob(app.orm, services.NewStatusReconciler(app.orm, nil), nil)
			res, err := job.Run(app.ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Checked %d users: %d changed, %d failed\n", res.Checked, res.Changed, res.Failed)
			return nil
		},
	}
}
