package v1

import (
	"time"

	"dynipupdater/api/types"
	"dynipupdater/internal/logbuffer"
	"dynipupdater/models"

	"github.com/samber/lo"
)

func ToRuleResultsRes(results []models.RuleChangeResult) []types.RuleResultRes {
	return lo.Map(results, func(r models.RuleChangeResult, _ int) types.RuleResultRes {
		return types.RuleResultRes{
			SecurityGroupID: r.Rule.SecurityGroupID,
			Port:            r.Rule.Port,
			Status:          r.Status.String(),
			Message:         r.Message,
		}
	})
}

func ToLogsRes(entries []logbuffer.Entry) types.LogsRes {
	return types.LogsRes{
		Logs: lo.Map(entries, func(e logbuffer.Entry, _ int) types.LogEntryRes {
			return types.LogEntryRes{
				Time:    e.Time.Format(time.RFC3339),
				Level:   e.Level,
				Message: e.Message,
				Error:   e.Error,
			}
		}),
	}
}
