package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/silexio/zping/common"
	"github.com/silexio/zping/config"
	"github.com/silexio/zping/ethernet"
	"github.com/silexio/zping/icmp"
	"github.com/silexio/zping/prober"
	"github.com/silexio/zping/runner"
	"github.com/silexio/zping/socket"
)

var probeCmd = &cobra.Command{
	Use:   "probe [addr,count,interval[;addr,count,interval...]]",
	Short: "Probe hosts with ICMP Echo Requests",
	Long: `Probe each target host with ICMP Echo Requests. A target row is
"addr,count,interval": an IPv4 address, how many attempts to make
(1-10), and the milliseconds between attempts (1-1000). Rows are
separated by ';' and may also come from the YAML config file.`,
	Args: cobra.ArbitraryArgs,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	logger := common.GetLogger()

	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("interface") {
		cfg.Interface, _ = flags.GetString("interface")
	}
	if flags.Changed("slots") {
		cfg.Slots, _ = flags.GetInt("slots")
	}
	if flags.Changed("rate") {
		cfg.Rate, _ = flags.GetFloat64("rate")
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	rows, err := ParseTargets(args)
	if err != nil {
		return err
	}
	cfg.Targets = append(cfg.Targets, rows...)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(cfg.Targets) == 0 {
		return fmt.Errorf("no targets: pass rows like 1.1.1.1,3,100 or set them in the config file")
	}

	if cfg.GeoIPDB != "" {
		if err := common.OpenGeoIP(cfg.GeoIPDB); err != nil {
			logger.Warn("GeoIP database unavailable", zap.String("path", cfg.GeoIPDB), zap.Error(err))
		}
	}

	conf, err := resolveConf(cfg.Interface)
	if err != nil {
		return err
	}
	sock, err := socket.Open(conf.Iface)
	if err != nil {
		return err
	}
	p, err := prober.New(cfg.Slots, conf, cfg.Timeout, sock, icmp.New())
	if err != nil {
		sock.Close()
		return err
	}
	defer p.Close()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	targets := make([]runner.Target, 0, len(cfg.Targets))
	for _, row := range cfg.Targets {
		targets = append(targets, runner.FromConfig(row))
	}
	s := runner.New(p, cfg.Rate).Run(ctx, targets)
	logger.Debug("Run finished",
		zap.Int("targets", s.Targets),
		zap.Uint64("transmitted", s.Transmitted),
		zap.Uint64("received", s.Received))
	return nil
}

func resolveConf(iface string) (*ethernet.Conf, error) {
	if iface != "" {
		return ethernet.New(iface)
	}
	return ethernet.Any()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		common.GetLogger().Error("Metrics server failed", zap.String("addr", addr), zap.Error(err))
	}
}
