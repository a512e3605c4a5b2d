// Package connectors provides document sources that feed the ingestion
// pipeline. The filesystem connector scans and watches a directory for
// files the pipeline accepts.
package connectors
