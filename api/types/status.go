package types

type ErrorRes struct {
	Error string `json:"error"`
}

type RuleResultRes struct {
	SecurityGroupID string `json:"securityGroupId" example:"sg-0123456789abcdef0"`
	Port            int    `json:"port" example:"22"`
	Status          string `json:"status" example:"success"`
	Message         string `json:"message" example:"Success: Connection to port 22 is OPEN"`
}

type StatusRes struct {
	PublicIP   string          `json:"publicIp" example:"203.0.113.5"`
	DeviceName string          `json:"deviceName" example:"laptop"`
	Closed     bool            `json:"closed"`
	Open       []RuleResultRes `json:"open"`
	Close      []RuleResultRes `json:"close"`
}

type CloseRes struct {
	Close []RuleResultRes `json:"close"`
}

type LogEntryRes struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type LogsRes struct {
	Logs []LogEntryRes `json:"logs"`
}
