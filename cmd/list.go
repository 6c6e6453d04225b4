package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quadglow/quadglow/internal/usb"
)

func NewListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List compatible microphones attached over USB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeList(all)
		},
		Example: `  # Show compatible microphones
  quadglow list

  # Show every attached USB device, marking compatible ones
  quadglow list --all`,
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include devices outside the allow-list")

	return cmd
}

func executeList(all bool) error {
	backend, err := usb.NewBackend()
	if err != nil {
		return err
	}
	defer backend.Close()

	infos, err := backend.ListDevices()
	if err != nil {
		return err
	}

	compatible := color.New(color.FgGreen).SprintFunc()
	matches := 0
	for _, info := range infos {
		ok := usb.Compatible(info.Identity)
		if ok {
			matches++
		}
		if !ok && !all {
			continue
		}
		line := fmt.Sprintf("%04x:%04x  bus %-3d addr %-3d",
			info.Identity.Vendor, info.Identity.Product, info.Bus, info.Address)
		if ok {
			profile := usb.ProfileFor(info.Identity)
			fmt.Printf("%s  %s\n", line, compatible("compatible ("+profile.Name+" profile)"))
		} else {
			fmt.Println(line)
		}
	}
	if matches == 0 {
		fmt.Println("No compatible microphone found.")
	}
	return nil
}
