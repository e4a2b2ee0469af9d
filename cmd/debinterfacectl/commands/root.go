package commands

import (
	"io"

	"debinterface-agent/internal/infrastructure/config"
	"debinterface-agent/internal/infrastructure/container"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// globalOptions는 모든 하위 명령이 공유하는 경로와 로깅 설정입니다
type globalOptions struct {
	interfacesFile string
	rangeFile      string
	backupFile     string
	backupDir      string
	initScript     string
	strict         bool
	logLevel       string

	container *container.Container
	logger    *logrus.Logger
}

// NewRootCmd는 debinterfacectl 루트 명령을 생성합니다
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "debinterfacectl",
		Short:         "Debian interfaces 및 dnsmasq DHCP 범위 관리 도구",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.interfacesFile, "interfaces", "", "interfaces 파일 경로 (기본값: INTERFACES_FILE 또는 /etc/network/interfaces)")
	flags.StringVar(&opts.rangeFile, "range-file", "", "dnsmasq 범위 파일 경로")
	flags.StringVar(&opts.backupFile, "range-backup", "", "dnsmasq 범위 파일 백업 경로")
	flags.StringVar(&opts.backupDir, "backup-dir", "", "interfaces 백업 디렉토리")
	flags.StringVar(&opts.initScript, "init-script", "", "dnsmasq init 스크립트 경로")
	flags.BoolVar(&opts.strict, "strict", false, "형식이 잘못된 dhcp-range 를 에러로 처리")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "로그 레벨")

	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newShowCmd(opts))
	rootCmd.AddCommand(newIfaceCmd(opts))
	rootCmd.AddCommand(newRangeCmd(opts))
	rootCmd.AddCommand(newServiceCmd(opts))
	rootCmd.AddCommand(newPlanCmd(opts))

	return rootCmd
}

// init은 환경 변수 설정 위에 플래그 값을 덮어써서 로컬 컨테이너를 만듭니다
func (o *globalOptions) init(cmd *cobra.Command) error {
	o.logger = logrus.New()
	o.logger.SetOutput(cmd.ErrOrStderr())
	o.logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	o.logger.SetLevel(level)

	cfg, err := config.NewEnvironmentConfigLoader().Load()
	if err != nil {
		return err
	}
	overrideString(&cfg.Interfaces.Path, o.interfacesFile)
	overrideString(&cfg.Dnsmasq.RangeFile, o.rangeFile)
	overrideString(&cfg.Dnsmasq.BackupFile, o.backupFile)
	overrideString(&cfg.Dnsmasq.InitScript, o.initScript)
	overrideString(&cfg.Agent.BackupDirectory, o.backupDir)
	if o.strict {
		cfg.Dnsmasq.StrictDecoding = true
	}

	o.container = container.NewLocalContainer(cfg, o.logger)
	return nil
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
