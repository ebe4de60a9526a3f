// Package hcl_adapter reads and writes graph descriptions in HCL.
//
// A description file holds at most one graph block plus any number of pass,
// edge and output blocks:
//
//	graph "SVGF" {
//	  libraries = ["CorePasses.dll", "AccumulatePass"]
//	}
//
//	pass "Clear" "Background" {
//	  color = [0.1, 0.2, 0.3, 1.0]
//	}
//
//	edge {
//	  from = "Background.out"
//	  to   = "Accum.input"
//	}
//
//	output "Accum.output" {}
//
// Every attribute of a pass block becomes one entry of that pass's
// configuration. Attribute expressions are evaluated without variables, so
// they must be literal values.
package hcl_adapter
