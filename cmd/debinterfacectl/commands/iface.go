package commands

import (
	"fmt"
	"strconv"
	"strings"

	"debinterface-agent/internal/domain/entities"
	"debinterface-agent/internal/domain/errors"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "interfaces 파일의 모든 어댑터를 검증",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := opts.container.GetValidateInterfacesUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			for _, name := range result.Valid {
				fmt.Fprintf(out(cmd), "%s: ok\n", name)
			}
			for _, invalid := range result.Invalid {
				fmt.Fprintf(out(cmd), "%s: %v\n", invalid.Name, invalid.Err)
			}
			if len(result.Invalid) > 0 {
				return fmt.Errorf("%d개 어댑터 검증 실패", len(result.Invalid))
			}
			return nil
		},
	}
}

func newShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [NAME...]",
		Short: "어댑터 설정을 YAML 로 출력",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapters, err := opts.parseAdapters()
			if err != nil {
				return err
			}

			wanted := map[string]bool{}
			for _, name := range args {
				wanted[name] = true
			}

			shown := 0
			for _, adapter := range adapters {
				if len(wanted) > 0 && !wanted[adapter.Name()] {
					continue
				}
				if shown > 0 {
					fmt.Fprintln(out(cmd), "---")
				}
				if err := adapter.Display(out(cmd)); err != nil {
					return err
				}
				shown++
			}
			if len(wanted) > 0 && shown == 0 {
				return errors.NewNotFoundError(fmt.Sprintf("어댑터를 찾을 수 없습니다: %s", strings.Join(args, ", ")))
			}
			return nil
		},
	}
}

func newIfaceCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iface",
		Short: "interfaces 파일의 어댑터 편집",
	}

	cmd.AddCommand(newIfaceAddCmd(opts))
	cmd.AddCommand(newIfaceSetCmd(opts))
	cmd.AddCommand(newIfaceRmCmd(opts))
	cmd.AddCommand(newIfaceRestoreCmd(opts))
	return cmd
}

func newIfaceAddCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME [KEY=VALUE...]",
		Short: "새 어댑터 추가",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapters, err := opts.parseAdapters()
			if err != nil {
				return err
			}
			if findAdapter(adapters, args[0]) != nil {
				return errors.NewArgumentError(fmt.Sprintf("이미 존재하는 어댑터입니다: %s", args[0]))
			}

			options, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			options[entities.OptName] = args[0]

			adapter, err := entities.NewNetworkAdapter(options)
			if err != nil {
				return err
			}
			return opts.writeAdapters(cmd, append(adapters, adapter))
		},
	}
}

func newIfaceSetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME KEY=VALUE...",
		Short: "기존 어댑터의 옵션 변경",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapters, err := opts.parseAdapters()
			if err != nil {
				return err
			}
			adapter := findAdapter(adapters, args[0])
			if adapter == nil {
				return errors.NewNotFoundError(fmt.Sprintf("어댑터를 찾을 수 없습니다: %s", args[0]))
			}

			options, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			if err := adapter.SetOptions(options); err != nil {
				return err
			}
			return opts.writeAdapters(cmd, adapters)
		},
	}
}

func newIfaceRmCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME",
		Short: "어댑터 삭제",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapters, err := opts.parseAdapters()
			if err != nil {
				return err
			}

			kept := adapters[:0]
			for _, adapter := range adapters {
				if adapter.Name() != args[0] {
					kept = append(kept, adapter)
				}
			}
			if len(kept) == len(adapters) {
				return errors.NewNotFoundError(fmt.Sprintf("어댑터를 찾을 수 없습니다: %s", args[0]))
			}
			return opts.writeAdapters(cmd, kept)
		},
	}
}

func newIfaceRestoreCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "가장 최근 백업으로 interfaces 파일 복구",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.container.GetConfig().Interfaces.Path
			if err := opts.container.GetBackupService().RestoreLatestBackup(cmd.Context(), "interfaces", path); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "restored %s\n", path)
			return nil
		},
	}
}

func (o *globalOptions) parseAdapters() ([]*entities.NetworkAdapter, error) {
	return o.container.GetAdapterReader().Parse(o.container.GetConfig().Interfaces.Path)
}

func (o *globalOptions) writeAdapters(cmd *cobra.Command, adapters []*entities.NetworkAdapter) error {
	path := o.container.GetConfig().Interfaces.Path
	if err := o.container.GetAdapterWriter().Write(cmd.Context(), path, adapters); err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "wrote %d adapters to %s\n", len(adapters), path)
	return nil
}

func findAdapter(adapters []*entities.NetworkAdapter, name string) *entities.NetworkAdapter {
	for _, adapter := range adapters {
		if adapter.Name() == name {
			return adapter
		}
	}
	return nil
}

// parseAssignments는 KEY=VALUE 인자를 옵션 맵으로 바꿉니다.
// auto, hotplug 는 bool 로, bridge-opts 는 "키 값" 쌍으로 해석합니다.
func parseAssignments(args []string) (map[string]any, error) {
	options := map[string]any{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewArgumentError(fmt.Sprintf("KEY=VALUE 형식이 아닙니다: %q", arg))
		}

		switch key {
		case entities.OptAuto, entities.OptHotplug, "allow-hotplug":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, errors.NewArgumentError(fmt.Sprintf("%s 는 true/false 여야 합니다: %q", key, value))
			}
			options[key] = b
		case entities.OptBridgeOpts:
			opts, _ := options[key].(map[string]string)
			if opts == nil {
				opts = map[string]string{}
			}
			optKey, optValue, _ := strings.Cut(strings.TrimSpace(value), " ")
			opts[optKey] = strings.TrimSpace(optValue)
			options[key] = opts
		default:
			options[key] = value
		}
	}
	return options, nil
}
