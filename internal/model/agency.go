package model

import "time"

// DeadlinePolicy is the statutory response-window policy for an agency.
// The base window, day-counting mode, and extension allowance are
// jurisdiction data supplied with the agency record, never hardcoded.
type DeadlinePolicy struct {
	ResponseDays     int  `json:"response_days" toml:"response_days"`
	BusinessDays     bool `json:"business_days" toml:"business_days"`
	MaxExtensionDays int  `json:"max_extension_days" toml:"max_extension_days"`
}

// Deadline computes the statutory deadline for a request created at the given
// time. Business-day counting skips Saturday and Sunday; holidays are
// jurisdiction data this system does not own.
func (p DeadlinePolicy) Deadline(created time.Time) time.Time {
	return p.addDays(created, p.ResponseDays)
}

// Extend computes a new deadline after the agency grants an extension of the
// given number of days, counted from the prior deadline and capped at
// MaxExtensionDays.
func (p DeadlinePolicy) Extend(prior time.Time, days int) time.Time {
	if p.MaxExtensionDays > 0 && days > p.MaxExtensionDays {
		days = p.MaxExtensionDays
	}
	return p.addDays(prior, days)
}

func (p DeadlinePolicy) addDays(from time.Time, days int) time.Time {
	if days <= 0 {
		return from
	}
	if !p.BusinessDays {
		return from.AddDate(0, 0, days)
	}
	t := from
	for remaining := days; remaining > 0; {
		t = t.AddDate(0, 0, 1)
		switch t.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		remaining--
	}
	return t
}

// Agency is immutable reference data describing one government agency.
type Agency struct {
	ID           string         `json:"id" toml:"id"`
	Name         string         `json:"name" toml:"name"`
	Jurisdiction string         `json:"jurisdiction" toml:"jurisdiction"`
	// PortalFamily binds the agency to a registered adapter family
	// ("nextrequest", "govqa", "email", ...). Empty means unknown; the
	// registry probes adapter discovery to find one.
	PortalFamily string         `json:"portal_family,omitempty" toml:"portal_family"`
	PortalURL    string         `json:"portal_url,omitempty" toml:"portal_url"`
	Deadline     DeadlinePolicy `json:"deadline" toml:"deadline"`
}
