// Package attribution ranks the busiest Concourse workers and explains what
// they are running by joining three independently fetched datasets.
//
// # Pipeline
//
//  1. RankWorkers keeps bosh instances in the "worker" group, sums
//     cpu_sys + cpu_user + cpu_wait and returns the top N (stable on ties)
//  2. NormalizeContainers fills id/name defaults and keeps created task containers
//  3. SelectActiveBuilds aliases id -> build_id and keeps started builds
//  4. Attribute derives each worker's short id, prefix-matches container
//     worker names, then joins the matched containers to their builds
//
// # Matching
//
// The short id is the first 8 characters of the instance uuid. Fly worker
// names carry extra suffixes, so containers match by prefix. Two ranked
// workers can share a short id; Attribute reports such collisions and, in
// strict mode, refuses to attribute either worker.
//
// # Failures
//
// Only RankWorkers fails outright (ErrDataUnavailable). Attribute never
// fails as a whole: malformed instance ids, collisions and missing join
// columns become a SectionError on the affected worker only.
package attribution
