// Package remote implements the conditional fetch pipeline that keeps the
// local data cache in sync with the remote conference data manifest. A sync
// session downloads the manifest (guarded by If-Modified-Since), fetches every
// referenced data file cache-first, and prunes stale cache entries once the
// whole manifest has been processed successfully. Each session owns its own
// keep-set and byte counters and reports them as an explicit Result value;
// there are no retries anywhere in this package, callers own that policy.
package remote
