package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	mailtpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
)

const localTimeLayout = "02 January 2006, 15:04 MST"

// LocalizeForIP looks up data["IP"] once, fills an empty Location and
// rewrites the Time and ExpiresAtText strings in the caller's timezone.
// Missing IPs, failed lookups and unknown zones leave data untouched.
func LocalizeForIP(ctx context.Context, resolver mailtpl.GeoResolver, data map[string]any) {
	if resolver == nil || data == nil {
		return
	}
	ip := strings.TrimSpace(fmt.Sprintf("%v", data["IP"]))
	if ip == "" || ip == "<nil>" {
		return
	}
	g, err := resolver.Lookup(ctx, ip)
	if err != nil {
		return
	}
	if loc := strings.TrimSpace(fmt.Sprintf("%v", data["Location"])); loc == "" || loc == "<nil>" {
		if s := mailtpl.FormatGeo(g); s != "" {
			data["Location"] = s
		}
	}
	if strings.TrimSpace(g.Timezone) == "" {
		return
	}
	zone, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return
	}
	if t, ok := parseTimeAny(data["ExpiresAt"]); ok {
		data["ExpiresAtText"] = t.In(zone).Format(localTimeLayout)
	}
	if t, ok := parseTimeAny(data["TimeAt"]); ok {
		data["Time"] = t.In(zone).Format(localTimeLayout)
	}
}

func parseTimeAny(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, !x.IsZero()
	}
	s := fmt.Sprintf("%v", v)
	for _, l := range []string{time.RFC3339Nano, "2006-01-02 15:04:05 -0700 MST", "2006-01-02 15:04:05 -0700"} {
		if t, err := time.Parse(l, s); err == nil && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}
