// Package dnsverify proves control of a custom domain by checking its DNS
// CNAME record against an expected target.
//
// A tenant points their domain at the platform with a CNAME record:
//
//	book.example.com CNAME domains.platform.io
//
// CheckCNAME performs one bounded lookup and reports whether the observed
// record points at the expected target:
//
//	report, err := dnsverify.CheckCNAME(ctx, "book.example.com", "domains.platform.io")
//	if err != nil {
//		// DNS failure: errors.Is against ErrNoRecords / ErrTimeout to
//		// pick a remediation message
//	}
//	if report.Matched {
//		// domain is verified
//	}
//
// A wrong-target record is not an error; the Report carries the observed
// records (Matched=false) so the caller can show expected vs. found values.
//
// Matching tolerates provider quirks: comparison ignores case and trailing
// dots, and a record that resolves to a sub-label of the target
// (edge.domains.platform.io) still matches.
//
// The resolver and timeout are injectable via options, so tests run against
// fixtures and production deployments can tune the lookup bound.
package dnsverify
