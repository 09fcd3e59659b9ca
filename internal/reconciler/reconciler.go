package reconciler

import (
	"context"
	"errors"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/yuriy-kovalchuk/spaceship-dns/internal/dns"
)

// ErrNoIPs is returned when ranking produced no usable addresses.
var ErrNoIPs = errors.New("no valid IPs found")

// RankFunc returns the ranked addresses to publish, best first.
type RankFunc func() []string

// Plan is the set of changes needed to bring the records in line with the
// ranked IPs.
type Plan struct {
	Delete []dns.Record
	Add    []dns.Record
}

// Empty reports whether the plan contains no changes.
func (p Plan) Empty() bool {
	return len(p.Delete) == 0 && len(p.Add) == 0
}

// Result summarises a run. Counts are records submitted to the provider,
// not confirmed changes.
type Result struct {
	Deleted int
	Added   int
	Changed bool
}

// Reconciler replaces the A records of each subdomain with the top ranked IPs.
type Reconciler struct {
	Log        logr.Logger
	DNS        dns.Client
	Rank       RankFunc
	Subdomains []string
	MaxIPCount int
	TTL        int
	DryRun     bool // when true, log the plan without applying it
}

// TopIPs returns the first n addresses of ips, or all of them if there are fewer.
func TopIPs(ips []string, n int) []string {
	if n < 0 {
		n = 0
	}
	return ips[:min(len(ips), n)]
}

// BuildPlan computes the records to delete and add. Each distinct subdomain is
// handled once, in configured order: every current A record with that name is
// deleted and one A record per target IP is added.
func BuildPlan(current []dns.Record, subdomains, targets []string, ttl int) Plan {
	var plan Plan
	seen := sets.New[string]()
	for _, sub := range subdomains {
		if seen.Has(sub) {
			continue
		}
		seen.Insert(sub)

		for _, r := range current {
			if dns.MatchesA(r, sub) {
				plan.Delete = append(plan.Delete, r)
			}
		}
		for _, ip := range targets {
			plan.Add = append(plan.Add, dns.NewA(sub, ip, ttl))
		}
	}
	return plan
}

// Run ranks the IPs, fetches the current records and applies the diff. Only
// an empty ranking is fatal; provider errors are logged and the run carries on
// with whatever data it has.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	ips := r.Rank()
	if len(ips) == 0 {
		return Result{}, ErrNoIPs
	}
	targets := TopIPs(ips, r.MaxIPCount)
	r.Log.Info("target IPs", "count", len(targets), "ips", targets)

	current, err := r.DNS.List(ctx)
	if err != nil {
		r.Log.Error(err, "error fetching records, continuing with partial snapshot", "fetched", len(current))
	}
	r.Log.V(1).Info("fetched current records", "count", len(current))

	plan := BuildPlan(current, r.Subdomains, targets, r.TTL)
	if plan.Empty() {
		r.Log.Info("no changes needed")
		return Result{}, nil
	}

	for _, rec := range plan.Delete {
		r.Log.V(1).Info("planned delete", "name", rec.Name, "address", rec.Address)
	}
	for _, rec := range plan.Add {
		r.Log.V(1).Info("planned add", "name", rec.Name, "address", rec.Address, "ttl", rec.TTL)
	}

	if r.DryRun {
		r.Log.Info("dry run, skipping update", "delete", len(plan.Delete), "add", len(plan.Add))
		return Result{}, nil
	}

	if len(plan.Delete) > 0 {
		r.Log.Info("deleting old records", "count", len(plan.Delete))
		if err := r.DNS.Delete(ctx, plan.Delete); err != nil {
			r.Log.Error(err, "delete failed")
		}
	}
	if len(plan.Add) > 0 {
		r.Log.Info("adding new records", "count", len(plan.Add))
		if err := r.DNS.Add(ctx, plan.Add); err != nil {
			r.Log.Error(err, "add failed")
		}
	}

	r.Log.Info("update complete")
	return Result{Deleted: len(plan.Delete), Added: len(plan.Add), Changed: true}, nil
}
