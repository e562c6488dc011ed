// Package protocol describes the Fe wire format: one typed request per
// endpoint, the table that derives each endpoint's operation key, and the
// JSON records messages travel as.
//
// Absent request fields are replaced by sentinels ("unknown", "-1") during
// Normalize, and a sentinel in any field an operation key is built from
// makes OperationKey fail. The server treats that as missing credentials.
package protocol
