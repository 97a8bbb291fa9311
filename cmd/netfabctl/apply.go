package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/newtron-network/netfabric/pkg/audit"
	"github.com/newtron-network/netfabric/pkg/effector"
	"github.com/newtron-network/netfabric/pkg/lsdn"
	"github.com/newtron-network/netfabric/pkg/netops/direct"
	"github.com/newtron-network/netfabric/pkg/netops/vlan"
	"github.com/newtron-network/netfabric/pkg/netops/vxlan"
	"github.com/newtron-network/netfabric/pkg/remotedeploy"
	"github.com/newtron-network/netfabric/pkg/topoconfig"
	"github.com/newtron-network/netfabric/pkg/util"
)

var (
	dryRun     bool
	auditAddr  string
	remoteHost string
	remoteUser string
)

func init() {
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate only, do not commit")
	applyCmd.Flags().StringVar(&auditAddr, "audit-redis", "", "redis address to log commit events to (disabled if empty)")
	applyCmd.Flags().StringVar(&remoteHost, "remote", "", "run apply on this host over SSH instead of locally (disabled if empty)")
	applyCmd.Flags().StringVar(&remoteUser, "remote-user", "root", "SSH user for --remote")
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Load a topology document and commit it against kernel state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if remoteHost != "" {
			return applyRemote()
		}

		ctx := lsdn.NewContext("netfabctl")
		problems := 0
		ctx.SetProblemCallback(func(p lsdn.Problem, user any) {
			problems++
			util.Logger.Warn(lsdn.Format(p))
		}, nil)

		eff, err := effector.NewNetlink()
		if err != nil {
			return fmt.Errorf("open netlink effector: %w", err)
		}
		defer eff.Close()

		ctx.RegisterNetOps(lsdn.Direct{}.Name(), direct.New(eff))
		ctx.RegisterNetOps(lsdn.VLAN{}.Name(), vlan.New(eff))
		ctx.RegisterNetOps(lsdn.VXLANMcast{}.Name(), vxlan.NewMcast(eff))
		ctx.RegisterNetOps(lsdn.VXLANE2E{}.Name(), vxlan.NewE2E(eff))
		ctx.RegisterNetOps(lsdn.VXLANStatic{}.Name(), vxlan.NewStatic(eff))

		if err := topoconfig.Load(ctx, topoFile); err != nil {
			return fmt.Errorf("load %s: %w", topoFile, err)
		}

		var logger audit.Logger
		if auditAddr != "" {
			rl, err := audit.NewRedisLogger(auditAddr, "netfabric:audit", 10000)
			if err != nil {
				util.Logger.Warnf("audit logging disabled: %v", err)
			} else {
				logger = rl
				defer rl.Close()
			}
		}

		if dryRun {
			err := ctx.Validate()
			logAttempt(logger, "validate", problems, err, 0)
			if err != nil {
				return fmt.Errorf("%d problem(s) found", problems)
			}
			util.Logger.Info("topology is valid (dry run)")
			return nil
		}

		start := time.Now()
		err = ctx.Commit(context.Background())
		logAttempt(logger, "commit", problems, err, time.Since(start))
		if err != nil {
			return fmt.Errorf("commit failed: %w", err)
		}
		util.Logger.Info("topology committed")
		return nil
	},
}

func applyRemote() error {
	fmt.Printf("SSH password for %s@%s: ", remoteUser, remoteHost)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	flags := "apply -f " + topoFile
	if dryRun {
		flags += " --dry-run"
	}
	out, err := remotedeploy.Run(remotedeploy.Target{
		Host:     remoteHost,
		User:     remoteUser,
		Password: string(password),
	}, "netfabctl "+flags)
	fmt.Print(out)
	return err
}

func logAttempt(logger audit.Logger, op string, problems int, err error, duration time.Duration) {
	if logger == nil {
		return
	}
	event := audit.NewEvent("netfabctl", op).WithProblems(problems).WithDuration(duration)
	if err != nil {
		event.WithError(err)
	} else {
		event.WithSuccess()
	}
	if logErr := logger.Log(event); logErr != nil {
		util.Logger.Warnf("audit log: %v", logErr)
	}
}
