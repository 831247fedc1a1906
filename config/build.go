package config

import (
	"fmt"

	"github.com/c360/signalbus/envelope"
	"github.com/c360/signalbus/errors"
	"github.com/c360/signalbus/monitor"
)

// BuildRule constructs the envelope rule described by a RuleConfig. Values
// are float64 and time is float64 seconds, matching the daemon's sample
// pipeline.
func BuildRule(r RuleConfig) (envelope.Rule[float64, float64], error) {
	bounds := envelope.Bounds{Inclusive: r.Inclusive}

	switch r.Kind {
	case KindAbove:
		return &envelope.Above[float64, float64]{
			Hi:     r.Hi,
			Bounds: bounds,
			Debounce: envelope.Debounce[float64]{
				EnterDelay: r.EnterS,
				ExitDelay:  r.ExitS,
			},
		}, nil
	case KindBelow:
		return &envelope.Below[float64, float64]{
			Lo:     r.Lo,
			Bounds: bounds,
			Debounce: envelope.Debounce[float64]{
				EnterDelay: r.EnterS,
				ExitDelay:  r.ExitS,
			},
		}, nil
	case KindWithin:
		return &envelope.Within[float64, float64]{
			Lo:     r.Lo,
			Hi:     r.Hi,
			Bounds: bounds,
			Debounce: envelope.Debounce[float64]{
				EnterDelay: r.EnterS,
				ExitDelay:  r.ExitS,
			},
		}, nil
	case KindOutside:
		return &envelope.Outside[float64, float64]{
			Lo:     r.Lo,
			Hi:     r.Hi,
			Bounds: bounds,
			Debounce: envelope.Debounce[float64]{
				EnterDelay: r.EnterS,
				ExitDelay:  r.ExitS,
			},
		}, nil
	case KindWithinHysteresis:
		return envelope.NewWithinHysteresis[float64](
			r.LoEnter, r.LoExit, r.HiExit, r.HiEnter, r.EnterS, r.ExitS)
	case KindOutsideHysteresis:
		return envelope.NewOutsideHysteresis[float64](
			r.LoExit, r.LoEnter, r.HiEnter, r.HiExit, r.EnterS, r.ExitS)
	default:
		return nil, errors.WrapInvalid(
			fmt.Errorf("unknown rule kind %q", r.Kind),
			"Config", "BuildRule", "rule kind dispatch")
	}
}

// BuildMonitors creates every configured monitor in the pool and binds its
// rules. Monitors use float64 values and float64-second timestamps.
func BuildMonitors(cfg *Config, pool *monitor.Pool, options ...monitor.Option) (map[string]*monitor.Monitor[float64, float64], error) {
	monitors := make(map[string]*monitor.Monitor[float64, float64], len(cfg.Monitors))

	for _, mc := range cfg.Monitors {
		opts := append([]monitor.Option{monitor.WithMaxRules(mc.MaxRules)}, options...)
		m, err := monitor.Create[float64, float64](pool, mc.Name, mc.WindowS, opts...)
		if err != nil {
			return nil, errors.Wrap(err, "Config", "BuildMonitors", "create monitor "+mc.Name)
		}

		for _, rc := range mc.Rules {
			rule, err := BuildRule(rc)
			if err != nil {
				return nil, err
			}
			if err := m.AddRule(rule); err != nil {
				return nil, errors.Wrap(err, "Config", "BuildMonitors", "bind rule for "+mc.Name)
			}
		}
		monitors[mc.Name] = m
	}

	return monitors, nil
}
