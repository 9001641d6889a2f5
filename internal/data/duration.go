package data

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts "30s"-style strings or a bare number of seconds, the
// unit content authors use for respawn timers.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}

	var secs float64
	if err := node.Decode(&secs); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}

	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}
