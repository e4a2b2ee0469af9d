package commands

import (
	"fmt"

	"debinterface-agent/internal/infrastructure/dnsmasq"

	"github.com/spf13/cobra"
)

func newServiceCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "dnsmasq 서비스 제어",
	}

	for _, action := range []string{dnsmasq.ActionStart, dnsmasq.ActionStop, dnsmasq.ActionRestart} {
		cmd.AddCommand(newServiceActionCmd(opts, action))
	}
	return cmd
}

func newServiceActionCmd(opts *globalOptions, action string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: fmt.Sprintf("dnsmasq %s", action),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, output := opts.container.GetServiceController().Control(cmd.Context(), action)
			if output != "" {
				fmt.Fprintln(out(cmd), output)
			}
			if !ok {
				return fmt.Errorf("dnsmasq %s 실패", action)
			}
			return nil
		},
	}
}
