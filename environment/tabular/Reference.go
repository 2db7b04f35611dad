package tabular

// Reference returns the configuration of a small 4-state, 2-action MDP.
// From s0, action a0 leads to s1 with probability 0.8 and to s2 with
// probability 0.2, while a1 leads to s2. In s1, a0 earns 1 and stays in
// s1 or ends in s3 with equal probability, while a1 earns -1 and leads
// to s2. In s2, a0 earns 2 and ends in s3, while a1 earns -1 and stays
// in s2. State s3 is terminal. Episodes start in s0 and are undiscounted.
func Reference() Config {
	return Config{
		Discount: 1.0,
		Start:    "s0",
		States:   []string{"s0", "s1", "s2", "s3"},
		Actions:  []string{"a0", "a1"},
		Transitions: map[string]map[string]map[string]float64{
			"s0": {
				"a0": {"s1": 0.8, "s2": 0.2},
				"a1": {"s2": 1.0},
			},
			"s1": {
				"a0": {"s1": 0.5, "s3": 0.5},
				"a1": {"s2": 1.0},
			},
			"s2": {
				"a0": {"s3": 1.0},
				"a1": {"s2": 1.0},
			},
		},
		Rewards: map[string]map[string]float64{
			"s0": {"a0": 0, "a1": 0},
			"s1": {"a0": 1, "a1": -1},
			"s2": {"a0": 2, "a1": -1},
		},
	}
}
