package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/pkg/timestamp"
)

func newGroupsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List and manage groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := withRetry(cmd.Context(), func() ([]api.Group, error) {
				return a.client.ListAllGroups(cmd.Context())
			})
			if err != nil {
				return err
			}
			return a.printGroups(groups)
		},
	}

	cmd.AddCommand(
		newGroupsFormerCommand(a),
		newGroupsShowCommand(a),
		newGroupsCreateCommand(a),
		newGroupsUpdateCommand(a),
		newGroupsLeaveCommand(a),
		newGroupsDestroyCommand(a),
		newGroupsRejoinCommand(a),
		newMembersCommand(a),
	)
	return cmd
}

func newGroupsFormerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "former",
		Short: "List groups you have left",
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := withRetry(cmd.Context(), func() ([]api.Group, error) {
				return a.client.ListFormerGroups(cmd.Context())
			})
			if err != nil {
				return err
			}
			return a.printGroups(groups)
		},
	}
}

func newGroupsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <group-id>",
		Short: "Show group details and members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := withRetry(cmd.Context(), func() (*api.Group, error) {
				return a.client.GetGroup(cmd.Context(), args[0])
			})
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(group)
			}
			fmt.Printf("Name:        %s\n", group.Name)
			fmt.Printf("ID:          %s\n", group.ID)
			if group.Description != "" {
				fmt.Printf("Description: %s\n", group.Description)
			}
			fmt.Printf("Created:     %s\n", timestamp.Format(group.CreatedAt))
			if group.ShareURL != "" {
				fmt.Printf("Share URL:   %s\n", group.ShareURL)
			}
			fmt.Printf("Members:     %d\n", len(group.Members))
			for _, m := range group.Members {
				fmt.Printf("  %s (user %s, membership %s)\n", m.Nickname, m.UserID, m.ID)
			}
			return nil
		},
	}
}

func newGroupsCreateCommand(a *app) *cobra.Command {
	var description string
	var share bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := a.client.CreateGroup(cmd.Context(), api.CreateGroupRequest{
				Name:        args[0],
				Description: description,
				Share:       share,
			})
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(group)
			}
			fmt.Printf("Created group %s (%s)\n", group.Name, group.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "group description")
	cmd.Flags().BoolVar(&share, "share", false, "enable the join link")
	return cmd
}

func newGroupsUpdateCommand(a *app) *cobra.Command {
	var name, description, imageURL string
	cmd := &cobra.Command{
		Use:   "update <group-id>",
		Short: "Update group settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.UpdateGroupRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("image-url") {
				req.ImageURL = &imageURL
			}
			group, err := a.client.UpdateGroup(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(group)
			}
			fmt.Printf("Updated group %s\n", group.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new group name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "new group image URL")
	return cmd
}

func newGroupsLeaveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "leave <group-id>",
		Short: "Leave a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.LeaveGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Left group", args[0])
			return nil
		},
	}
}

func newGroupsDestroyCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "destroy <group-id>",
		Short: "Permanently delete a group you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("destroying a group is permanent; pass --yes to confirm")
			}
			if err := a.client.DestroyGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Destroyed group", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm destruction")
	return cmd
}

func newGroupsRejoinCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rejoin <group-id>",
		Short: "Rejoin a group you previously left",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.RejoinGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Rejoined group", args[0])
			return nil
		},
	}
}

func newMembersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage group membership",
	}
	cmd.AddCommand(newMembersAddCommand(a), newMembersRemoveCommand(a), newMembersResultsCommand(a))
	return cmd
}

func newMembersAddCommand(a *app) *cobra.Command {
	var nickname, phone, email, userID string
	cmd := &cobra.Command{
		Use:   "add <group-id>",
		Short: "Invite a member by user id, phone number, or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" && phone == "" && email == "" {
				return fmt.Errorf("one of --user-id, --phone, or --email is required")
			}
			member := api.Member{
				Nickname:    nickname,
				UserID:      userID,
				PhoneNumber: phone,
				Email:       email,
			}
			res, err := a.client.AddMembers(cmd.Context(), args[0], []api.Member{member})
			if err != nil {
				return err
			}
			fmt.Printf("Invite submitted; results id %s\n", res.ResultsID)
			return nil
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "display name in the group")
	cmd.Flags().StringVar(&userID, "user-id", "", "user id to add")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number to invite")
	cmd.Flags().StringVar(&email, "email", "", "email address to invite")
	return cmd
}

func newMembersRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <group-id> <membership-id>",
		Short: "Remove a member (membership id, not user id)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.RemoveMember(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("Removed member", args[1])
			return nil
		},
	}
}

func newMembersResultsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "results <group-id> <results-id>",
		Short: "Check the outcome of a previous invite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := withRetry(cmd.Context(), func() (*api.MemberResults, error) {
				return a.client.MemberResults(cmd.Context(), args[0], args[1])
			})
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(res)
			}
			for _, m := range res.Members {
				fmt.Printf("%s joined as %s\n", m.UserID, m.Nickname)
			}
			return nil
		},
	}
}
