// Package harness runs render scenarios against the list directive.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: push_and_truncate
//	description: "Appending and shrinking a bound list"
//	template: |
//	  <ul><li s-for="(item, i) in items">{{ i }}:{{ item }}</li></ul>
//	data:
//	  items: [a, b]
//	expect:
//	  html: "<ul><li>0:a</li><li>1:b</li></ul>"
//	steps:
//	  - op: push
//	    path: items
//	    values: [c]
//	    expect:
//	      scopes: [3]
//	  - op: truncate
//	    path: items
//	    length: 1
//	    expect:
//	      html: "<ul><li>0:a</li></ul>"
//
// Loading decodes the file strictly, validates it against an embedded CUE
// schema (schema.cue) and then checks per-operation fields.
//
// # Deterministic Runs
//
// Every run starts from fresh observed data, a fresh record-name clock and
// a testutil.SequentialTagGenerator, so owner tags read owner-1, owner-2, ...
// in discovery order. Two runs of one scenario produce byte-identical
// traces, which RunWithGolden compares against testdata/golden.
package harness
