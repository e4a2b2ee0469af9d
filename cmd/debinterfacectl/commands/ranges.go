package commands

import (
	"fmt"
	"os"

	"debinterface-agent/internal/domain/entities"
	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/infrastructure/dnsmasq"

	"github.com/spf13/cobra"
)

func newRangeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range",
		Short: "dnsmasq DHCP 범위 파일 관리",
	}

	cmd.AddCommand(newRangeListCmd(opts))
	cmd.AddCommand(newRangeSetCmd(opts))
	cmd.AddCommand(newRangeRmCmd(opts))
	cmd.AddCommand(newRangeDefaultsCmd(opts))
	cmd.AddCommand(newRangeRestoreCmd(opts))
	return cmd
}

func newRangeListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "범위 파일 내용 출력",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := opts.loadRanges()
			if err != nil {
				return err
			}
			for _, key := range rc.Keys() {
				value, _ := rc.Get(key)
				fmt.Fprintf(out(cmd), "%s=%s\n", key, value)
			}
			for _, r := range rc.Ranges() {
				fmt.Fprintf(out(cmd), "%s=%s\n", dnsmasq.RangeKey, r)
			}
			return nil
		},
	}
}

func newRangeSetCmd(opts *globalOptions) *cobra.Command {
	var lease string

	cmd := &cobra.Command{
		Use:   "set IFACE [START END]",
		Short: "인터페이스의 DHCP 범위 설정 (경계를 생략하면 interfaces 의 주소로 계산)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("IFACE 또는 IFACE START END 를 지정하세요")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := opts.loadRanges()
			if err != nil {
				return err
			}

			desired := entities.RangeDescriptor{Name: args[0], ConnType: entities.ConnTypeAccessPoint}
			if len(args) == 3 {
				desired.RangeIPStart, desired.RangeIPEnd = args[1], args[2]
			} else if desired, err = opts.planDescriptor(desired); err != nil {
				return err
			}

			if err := rc.CheckRange(desired); err != nil {
				return err
			}
			changed := rc.UpdateRange(desired)
			if lease != "" && rc.SetLeaseTime(desired.Name, lease) {
				changed = true
			}

			if !changed {
				fmt.Fprintln(out(cmd), "no change")
				return nil
			}
			return opts.writeRanges(cmd, rc)
		},
	}

	cmd.Flags().StringVar(&lease, "lease", "", "lease time (e.g., 12h)")
	return cmd
}

func newRangeRmCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm IFACE",
		Short: "인터페이스의 DHCP 범위 제거",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := opts.loadRanges()
			if err != nil {
				return err
			}
			if !rc.RmItfRange(args[0]) {
				return errors.NewNotFoundError(fmt.Sprintf("범위가 없습니다: %s", args[0]))
			}
			return opts.writeRanges(cmd, rc)
		},
	}
}

func newRangeDefaultsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "기본 범위(wlan0, eth1)로 범위 파일 초기화",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := opts.container.GetRangeConfig()
			rc.SetDefaults()
			return opts.writeRanges(cmd, rc)
		},
	}
}

func newRangeRestoreCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "백업 파일로 범위 파일 복구",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := opts.container.GetRangeConfig()
			if rc.BackupPath() == "" {
				return errors.NewArgumentError("백업 경로가 설정되지 않았습니다")
			}
			if err := rc.Restore(); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "restored %s from %s\n", rc.Path(), rc.BackupPath())
			return nil
		},
	}
}

// loadRanges는 범위 파일을 읽습니다. 파일이 없으면 빈 상태에서 시작합니다.
func (o *globalOptions) loadRanges() (*dnsmasq.RangeConfig, error) {
	rc := o.container.GetRangeConfig()
	if _, err := os.Stat(rc.Path()); os.IsNotExist(err) {
		rc.Clear()
		return rc, nil
	}
	if err := rc.Read(); err != nil {
		return nil, err
	}
	return rc, nil
}

func (o *globalOptions) writeRanges(cmd *cobra.Command, rc *dnsmasq.RangeConfig) error {
	if err := rc.Write(); err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "wrote %d ranges to %s\n", len(rc.Ranges()), rc.Path())
	return nil
}

// planDescriptor는 interfaces 파일의 어댑터 주소로 범위 경계를 채웁니다
func (o *globalOptions) planDescriptor(desired entities.RangeDescriptor) (entities.RangeDescriptor, error) {
	adapters, err := o.parseAdapters()
	if err != nil {
		return desired, err
	}
	adapter := findAdapter(adapters, desired.Name)
	if adapter == nil || adapter.Address() == "" {
		return desired, errors.NewNotFoundError(
			fmt.Sprintf("%s 의 정적 주소를 찾을 수 없어 범위를 계산할 수 없습니다", desired.Name))
	}
	return o.container.GetRangePlanner().Fill(desired, adapter)
}

func newPlanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan ADDRESS NETMASK",
		Short: "주소와 넷마스크로부터 기본 DHCP 범위 계산",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := opts.container.GetRangePlanner().DefaultBounds(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s %s\n", start, end)
			return nil
		},
	}
}
