// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip provides IP-to-country lookup using the MaxMind
// GeoLite2-Country database.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/avenir-labs/avenir-site/internal/util"
)

// Lookup handles IP to country lookup using MaxMind GeoLite2-Country database.
type Lookup struct {
	db          *maxminddb.Reader
	dbPath      string
	dbModTime   time.Time
	initialized bool
	enabled     bool
	mu          sync.RWMutex
}

// geoRecord matches the GeoLite2-Country database structure.
type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// NewLookup creates a new GeoIP lookup instance.
func NewLookup() *Lookup {
	return &Lookup{}
}

// Init initializes the GeoIP database from the given path.
// If path is empty, GeoIP lookups are disabled (graceful degradation).
func (g *Lookup) Init(dbPath string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.initialized = true
	g.dbPath = dbPath

	if dbPath == "" {
		g.enabled = false
		return nil
	}

	return g.loadDatabase()
}

// loadDatabase loads or reloads the MaxMind database.
// Caller must hold g.mu write lock.
func (g *Lookup) loadDatabase() error {
	info, err := os.Stat(g.dbPath)
	if err != nil {
		g.enabled = false
		if os.IsNotExist(err) {
			return fmt.Errorf("GeoIP database not found: %s", g.dbPath)
		}
		return fmt.Errorf("GeoIP database stat error: %w", err)
	}

	// Skip reload if not modified
	if g.db != nil && info.ModTime().Equal(g.dbModTime) {
		return nil
	}

	if g.db != nil {
		_ = g.db.Close()
		g.db = nil
	}

	db, err := maxminddb.Open(g.dbPath)
	if err != nil {
		g.enabled = false
		return fmt.Errorf("failed to open GeoIP database: %w", err)
	}

	g.db = db
	g.dbModTime = info.ModTime()
	g.enabled = true

	return nil
}

// Reload reloads the GeoIP database if it has been updated.
// Safe to call periodically from a cron job.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dbPath == "" {
		return nil
	}

	return g.loadDatabase()
}

// LookupCountry returns the 2-letter ISO country code for an IP address.
// Returns "LOCAL" for private and loopback IPs, and empty string when the
// lookup is disabled, the IP is invalid, or the country is unknown.
func (g *Lookup) LookupCountry(ip string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.initialized {
		return ""
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return ""
	}

	if util.IsPrivateIP(parsedIP) || parsedIP.IsLoopback() {
		return "LOCAL"
	}

	if !g.enabled || g.db == nil {
		return ""
	}

	var record geoRecord
	if err := g.db.Lookup(parsedIP, &record); err != nil {
		return ""
	}

	return record.Country.ISOCode
}

// IsEnabled returns whether GeoIP lookups are available.
func (g *Lookup) IsEnabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.enabled
}

// Close closes the GeoIP database.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db != nil {
		err := g.db.Close()
		g.db = nil
		g.enabled = false
		return err
	}
	return nil
}

// CountryName returns the full country name for a 2-letter country code.
func CountryName(code string) string {
	countries := map[string]string{
		"LOCAL": "Local Network",
		"US":    "United States",
		"GB":    "United Kingdom",
		"DE":    "Germany",
		"FR":    "France",
		"ES":    "Spain",
		"IT":    "Italy",
		"NL":    "Netherlands",
		"BE":    "Belgium",
		"AT":    "Austria",
		"CH":    "Switzerland",
		"PL":    "Poland",
		"CZ":    "Czech Republic",
		"SE":    "Sweden",
		"NO":    "Norway",
		"DK":    "Denmark",
		"FI":    "Finland",
		"UA":    "Ukraine",
		"CA":    "Canada",
		"MX":    "Mexico",
		"BR":    "Brazil",
		"AR":    "Argentina",
		"AU":    "Australia",
		"NZ":    "New Zealand",
		"JP":    "Japan",
		"CN":    "China",
		"KR":    "South Korea",
		"IN":    "India",
		"SG":    "Singapore",
		"HK":    "Hong Kong",
		"TW":    "Taiwan",
		"TH":    "Thailand",
		"VN":    "Vietnam",
		"ID":    "Indonesia",
		"MY":    "Malaysia",
		"PH":    "Philippines",
		"ZA":    "South Africa",
		"EG":    "Egypt",
		"NG":    "Nigeria",
		"KE":    "Kenya",
		"IL":    "Israel",
		"AE":    "United Arab Emirates",
		"SA":    "Saudi Arabia",
		"TR":    "Turkey",
		"GR":    "Greece",
		"PT":    "Portugal",
		"IE":    "Ireland",
		"RO":    "Romania",
		"HU":    "Hungary",
		"BG":    "Bulgaria",
		"HR":    "Croatia",
		"SK":    "Slovakia",
		"SI":    "Slovenia",
		"LT":    "Lithuania",
		"LV":    "Latvia",
		"EE":    "Estonia",
	}

	if name, ok := countries[code]; ok {
		return name
	}
	if code == "" {
		return "Unknown"
	}
	return code
}
