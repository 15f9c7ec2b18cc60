package firewall

import (
	"dynipupdater/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

func openPermission(rule models.Rule, cidr, description string) types.IpPermission {
	perm := closePermission(rule, cidr)
	perm.IpRanges[0].Description = aws.String(description)
	return perm
}

// closePermission never carries a description: revoke matches on
// protocol, ports and CIDR only.
func closePermission(rule models.Rule, cidr string) types.IpPermission {
	return types.IpPermission{
		IpProtocol: aws.String(protocolTCP),
		FromPort:   aws.Int32(int32(rule.Port)),
		ToPort:     aws.Int32(int32(rule.Port)),
		IpRanges: []types.IpRange{
			{CidrIp: aws.String(cidr)},
		},
	}
}
