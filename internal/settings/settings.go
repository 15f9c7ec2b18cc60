// Package settings reads the flat key/value settings (IPServer, DeviceName,
// Rule{N}.SecurityGroupId, Rule{N}.PortToOpen) from layered sources.
package settings

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"dynipupdater/models"
)

const (
	KeyIPServer   = "IPServer"
	KeyDeviceName = "DeviceName"

	keyRuleGroupFmt = "Rule%d.SecurityGroupId"
	keyRulePortFmt  = "Rule%d.PortToOpen"
)

// Lookup returns the raw value for key and whether the source defines it.
type Lookup func(key string) (string, bool)

func FromMap(m map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// FromEnv maps a settings key to an environment variable: prefix followed
// by the key with dots replaced by underscores (Rule1.PortToOpen ->
// DYNIP_Rule1_PortToOpen).
func FromEnv(prefix string) Lookup {
	return FromEnviron(prefix, os.LookupEnv)
}

func FromEnviron(prefix string, lookupEnv func(string) (string, bool)) Lookup {
	return func(key string) (string, bool) {
		return lookupEnv(EnvName(prefix, key))
	}
}

func EnvName(prefix, key string) string {
	return prefix + strings.ReplaceAll(key, ".", "_")
}

// Chain returns the value from the first lookup defining the key.
func Chain(lookups ...Lookup) Lookup {
	return func(key string) (string, bool) {
		for _, l := range lookups {
			if l == nil {
				continue
			}
			if v, ok := l(key); ok {
				return v, true
			}
		}
		return "", false
	}
}

func value(lookup Lookup, key string) string {
	v, _ := lookup(key)
	return strings.TrimSpace(v)
}

func Load(lookup Lookup) models.Settings {
	return models.Settings{
		IPServer:   value(lookup, KeyIPServer),
		DeviceName: value(lookup, KeyDeviceName),
		Rules:      DiscoverRules(lookup),
	}
}

// DiscoverRules scans Rule1, Rule2, ... and stops at the first index whose
// keys are missing or blank, or whose port is not a positive integer.
// Later indexes are never looked at, so Rule1, Rule2, Rule4 yields two rules.
func DiscoverRules(lookup Lookup) []models.Rule {
	var rules []models.Rule
	for n := 1; ; n++ {
		groupID := value(lookup, fmt.Sprintf(keyRuleGroupFmt, n))
		portText := value(lookup, fmt.Sprintf(keyRulePortFmt, n))
		if groupID == "" || portText == "" {
			break
		}
		port, err := strconv.Atoi(portText)
		if err != nil || port <= 0 {
			break
		}
		rules = append(rules, models.Rule{SecurityGroupID: groupID, Port: port})
	}
	return rules
}
