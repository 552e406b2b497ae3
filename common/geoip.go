package common

import (
	"net"
	"net/netip"

	"github.com/oschwald/geoip2-golang"
)

var GEOIP2_DB *geoip2.Reader

func init() {
	GEOIP2_DB = getGeoIP2DB()
}

func getGeoIP2DB() *geoip2.Reader {
	reader, _ := geoip2.Open("GeoLite2-Country.mmdb")
	return reader
}

// OpenGeoIP replaces the process-wide database with the one at path.
func OpenGeoIP(path string) error {
	reader, err := geoip2.Open(path)
	if err != nil {
		return err
	}
	GEOIP2_DB = reader
	return nil
}

// Country returns the ISO country code for addr, or "" when no GeoIP2
// database is present or the address is unknown to it.
func Country(addr netip.Addr) string {
	if GEOIP2_DB == nil {
		return ""
	}
	record, err := GEOIP2_DB.Country(net.IP(addr.AsSlice()))
	if err != nil || record == nil {
		return ""
	}
	return record.Country.IsoCode
}
