package models

import "fmt"

// Rule identifies one ingress permission to manage: TCP traffic to Port
// in security group SecurityGroupID.
type Rule struct {
	SecurityGroupID string `validate:"required"`
	Port            int    `validate:"min=1,max=65535"`
}

func (r Rule) String() string {
	return fmt.Sprintf("%s/tcp:%d", r.SecurityGroupID, r.Port)
}
