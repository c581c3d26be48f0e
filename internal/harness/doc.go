// Package harness runs scripted learner scenarios against the engine.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	curriculum: tone-pairs          # built-in name or path relative to the file
//	seed: 7                         # optional, seeds the random source
//	flow:
//	  - card: "C4|G4:compare-0"     # answer this card directly
//	    correct: true
//	    repeat: 4
//	    advance: 1m                 # clock step after each answer
//	  - next: true                  # answer whatever the engine asks
//	    repeat: 10
//	  - advance: 24h                # only move the clock
//	assertions:
//	  - type: vocabulary
//	    units: [C4, G4, E4]
//	  - type: unlocked_contains
//	    cards: ["C4|G4:compare-1"]
//
// # Assertion Types
//
//   - vocabulary: the vocabulary equals units, in order
//   - unlocked_contains: every listed card is unlocked
//   - retired_contains: every listed card is retired
//   - pending_count: the pending queue has count cards
//   - global_streak: the global streak equals count
//   - history_count: count answers were recorded
//   - mode: the ordering mode equals mode
//
// # Deterministic Testing
//
// Every scenario runs with a fake clock starting at testutil.Epoch,
// sequential history ids, a PCG source seeded from the scenario and a
// fresh in-memory SQLite store. The final state is saved and reloaded
// through the store before assertions run, so every scenario also
// exercises persistence.
package harness
