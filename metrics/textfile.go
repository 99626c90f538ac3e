package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// WriteTextfile dumps the default registry in the node_exporter textfile
// format. Commands are short lived, so this replaces a scrape endpoint.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	logrus.Debug("Writing metrics to ", path)
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
