package consistency

import (
	"fmt"
	"math/rand"
	"strings"
)

// Well-known slot names. Profiles may reference additional ad-hoc slots;
// those fall back to a generic word-pair value.
const (
	SlotPrimaryUsername    = "primary_username"
	SlotHostname           = "hostname"
	SlotOrganizationDomain = "organization_domain"
	SlotInternalIPRange    = "internal_ip_range"
	SlotProjectName        = "project_name"
	SlotPrimaryEmail       = "primary_email"
)

var (
	firstNames = []string{"john", "jane", "admin", "dev", "mike", "sarah", "alex", "chris", "dana", "luis"}
	lastNames  = []string{"smith", "doe", "johnson", "williams", "reyes", "chen", "patel", "garcia"}

	hostPrefixes = []string{"web", "app", "db", "api", "prod", "dev", "staging", "worker", "cache", "mail"}
	hostSuffixes = []string{"server", "node", "host", "box"}

	orgNames = []string{"northwind", "contoso", "acmecorp", "initech", "globex", "vandelay", "stark-labs", "umbra"}
	orgTLDs  = []string{"com", "io", "net", "co"}

	projectWords = []string{"atlas", "phoenix", "hermes", "orion", "vega", "quartz", "falcon", "nimbus", "cobalt", "drift"}

	genericAdjectives = []string{"blue", "rapid", "silent", "amber", "coastal", "prime"}
	genericNouns      = []string{"relay", "harbor", "ledger", "signal", "beacon", "vault"}
)

// derive produces a plausible value for a slot. Derived slots (email) pull
// in their dependencies first so they stay internally consistent. Caller
// holds c.mu.
func (c *Context) derive(slot string) (string, error) {
	switch slot {
	case SlotPrimaryUsername:
		return newUsername(), nil
	case SlotHostname:
		return newHostname(), nil
	case SlotOrganizationDomain:
		return newDomain(), nil
	case SlotInternalIPRange:
		return newIPRange(), nil
	case SlotProjectName:
		return pick(projectWords), nil
	case SlotPrimaryEmail:
		user, err := c.resolveLocked(SlotPrimaryUsername)
		if err != nil {
			return "", err
		}
		domain, err := c.resolveLocked(SlotOrganizationDomain)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s@%s", strings.ReplaceAll(user, "_", "."), domain), nil
	default:
		return fmt.Sprintf("%s-%s", pick(genericAdjectives), pick(genericNouns)), nil
	}
}

func newUsername() string {
	first := pick(firstNames)
	last := pick(lastNames)
	switch rand.Intn(5) {
	case 0:
		return first
	case 1:
		return first + last
	case 2:
		return first + "." + last
	case 3:
		return first + "_" + last
	default:
		return fmt.Sprintf("%s%d", first, rand.Intn(99)+1)
	}
}

func newHostname() string {
	switch rand.Intn(3) {
	case 0:
		return fmt.Sprintf("%s-%s-%02d", pick(hostPrefixes), pick(hostSuffixes), rand.Intn(99)+1)
	case 1:
		return fmt.Sprintf("%s%02d", pick(hostPrefixes), rand.Intn(99)+1)
	default:
		return fmt.Sprintf("%s-%d", pick(hostPrefixes), rand.Intn(900)+100)
	}
}

func newDomain() string {
	return pick(orgNames) + "." + pick(orgTLDs)
}

// newIPRange draws a private range in CIDR form.
func newIPRange() string {
	switch rand.Intn(3) {
	case 0:
		return fmt.Sprintf("10.%d.%d.0/24", rand.Intn(256), rand.Intn(256))
	case 1:
		return fmt.Sprintf("172.%d.%d.0/24", 16+rand.Intn(16), rand.Intn(256))
	default:
		return fmt.Sprintf("192.168.%d.0/24", rand.Intn(256))
	}
}

func pick(options []string) string {
	return options[rand.Intn(len(options))]
}
