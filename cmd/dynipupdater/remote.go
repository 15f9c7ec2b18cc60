package main

import (
	"context"
	"errors"

	"dynipupdater/api/types"
	"dynipupdater/internal/report"
	"dynipupdater/models"
	dynipupdaterAPI "dynipupdater/pkg/dynipupdater-api"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the public IP and rule results of the running instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.App.HTTPAPI.Enabled {
				return errors.New("status needs the HTTP API, enable httpApi in the config")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			client := dynipupdaterAPI.NewClient(cfg.App.HTTPAPI.Address, cfg.App.HTTPAPI.Port)
			status, err := client.Status(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report.PublicIP(out, status.PublicIP)
			report.Results(out, "Opened for "+status.DeviceName, fromRuleResultsRes(status.Open))
			if status.Closed {
				report.Results(out, "Closed", fromRuleResultsRes(status.Close))
			}
			return nil
		},
	}
}

func remoteClose(ctx context.Context, cfg models.HTTPAPI) ([]models.RuleChangeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := dynipupdaterAPI.NewClient(cfg.Address, cfg.Port).Close(ctx)
	if err != nil {
		return nil, err
	}
	return fromRuleResultsRes(res.Close), nil
}

func fromRuleResultsRes(res []types.RuleResultRes) []models.RuleChangeResult {
	return lo.Map(res, func(r types.RuleResultRes, _ int) models.RuleChangeResult {
		status := models.StatusError
		if r.Status == models.StatusSuccess.String() {
			status = models.StatusSuccess
		}
		return models.RuleChangeResult{
			Rule:    models.Rule{SecurityGroupID: r.SecurityGroupID, Port: r.Port},
			Message: r.Message,
			Status:  status,
		}
	})
}
