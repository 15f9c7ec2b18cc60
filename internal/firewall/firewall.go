// Package firewall opens and closes EC2 security group ingress rules for a
// single source address.
package firewall

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"dynipupdater/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"
)

const protocolTCP = "tcp"

// IngressAPI is the part of the EC2 client used by Synchronizer.
type IngressAPI interface {
	AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	RevokeSecurityGroupIngress(ctx context.Context, params *ec2.RevokeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error)
}

// Synchronizer applies and revokes the configured rules for publicIP.
// Rules are handled one by one in configured order; a failing rule never
// stops the remaining ones.
type Synchronizer struct {
	api        IngressAPI
	deviceName string
	publicIP   string
	rules      []models.Rule
}

func New(api IngressAPI, deviceName, publicIP string, rules []models.Rule) *Synchronizer {
	return &Synchronizer{
		api:        api,
		deviceName: deviceName,
		publicIP:   publicIP,
		rules:      rules,
	}
}

func (s *Synchronizer) PublicIP() string {
	return s.publicIP
}

func (s *Synchronizer) Rules() []models.Rule {
	return s.rules
}

func (s *Synchronizer) sourceCIDR() string {
	return s.publicIP + "/32"
}

// ApplyAll opens every rule and returns one result per rule, in order.
func (s *Synchronizer) ApplyAll(ctx context.Context) []models.RuleChangeResult {
	results := make([]models.RuleChangeResult, 0, len(s.rules))
	for _, rule := range s.rules {
		results = append(results, s.apply(ctx, rule))
	}
	return results
}

// RevokeAll closes every rule and returns one result per rule, in order.
func (s *Synchronizer) RevokeAll(ctx context.Context) []models.RuleChangeResult {
	results := make([]models.RuleChangeResult, 0, len(s.rules))
	for _, rule := range s.rules {
		results = append(results, s.revoke(ctx, rule))
	}
	return results
}

func (s *Synchronizer) apply(ctx context.Context, rule models.Rule) (res models.RuleChangeResult) {
	defer func() {
		if r := recover(); r != nil {
			res = failure(rule, fmt.Sprintf("Error: couldn't open port %d: %v", rule.Port, r))
		}
		logResult("open", res)
	}()

	out, err := s.api.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(rule.SecurityGroupID),
		IpPermissions: []types.IpPermission{openPermission(rule, s.sourceCIDR(), s.deviceName)},
	})
	if err != nil {
		if isDuplicate(err) {
			return success(rule, fmt.Sprintf("Success: Connection to port %d is (already) OPEN", rule.Port))
		}
		return failure(rule, fmt.Sprintf("Error: couldn't open port %d: %v", rule.Port, err))
	}

	var accepted *bool
	var status int
	if out != nil {
		accepted = out.Return
		status = httpStatus(out.ResultMetadata)
	}
	if code, ok := statusOK(status, accepted); !ok {
		return failure(rule, fmt.Sprintf("Error: couldn't open port %d. Code: %s", rule.Port, code))
	}
	return success(rule, fmt.Sprintf("Success: Connection to port %d is OPEN", rule.Port))
}

func (s *Synchronizer) revoke(ctx context.Context, rule models.Rule) (res models.RuleChangeResult) {
	defer func() {
		if r := recover(); r != nil {
			res = failure(rule, fmt.Sprintf("Error: couldn't close port %d: %v", rule.Port, r))
		}
		logResult("close", res)
	}()

	out, err := s.api.RevokeSecurityGroupIngress(ctx, &ec2.RevokeSecurityGroupIngressInput{
		GroupId:       aws.String(rule.SecurityGroupID),
		IpPermissions: []types.IpPermission{closePermission(rule, s.sourceCIDR())},
	})
	if err != nil {
		if isNotFound(err) {
			return success(rule, fmt.Sprintf("Success: Connection to port %d (already) CLOSED", rule.Port))
		}
		return failure(rule, fmt.Sprintf("Error: couldn't close port %d: %v", rule.Port, err))
	}

	var accepted *bool
	var status int
	if out != nil {
		accepted = out.Return
		status = httpStatus(out.ResultMetadata)
		// EC2 reports permissions it could not match instead of failing.
		if len(out.UnknownIpPermissions) > 0 {
			return success(rule, fmt.Sprintf("Success: Connection to port %d (already) CLOSED", rule.Port))
		}
	}
	if code, ok := statusOK(status, accepted); !ok {
		return failure(rule, fmt.Sprintf("Error: couldn't close port %d. Code: %s", rule.Port, code))
	}
	return success(rule, fmt.Sprintf("Success: Connection to port %d CLOSED", rule.Port))
}

// statusOK treats an unknown status (0) as 200 and a missing Return flag
// as accepted.
func statusOK(status int, accepted *bool) (string, bool) {
	if status == 0 {
		status = http.StatusOK
	}
	code := strconv.Itoa(status)
	if status != http.StatusOK {
		return code, false
	}
	if accepted != nil && !*accepted {
		return code + " (request not accepted)", false
	}
	return code, true
}

func success(rule models.Rule, msg string) models.RuleChangeResult {
	return models.RuleChangeResult{Rule: rule, Message: msg, Status: models.StatusSuccess}
}

func failure(rule models.Rule, msg string) models.RuleChangeResult {
	return models.RuleChangeResult{Rule: rule, Message: msg, Status: models.StatusError}
}

func logResult(action string, res models.RuleChangeResult) {
	ev := log.Info()
	if !res.OK() {
		ev = log.Error()
	}
	ev.Str("action", action).
		Str("group", res.Rule.SecurityGroupID).
		Int("port", res.Rule.Port).
		Msg(res.Message)
}
