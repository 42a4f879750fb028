// Package curriculum loads lectures, entities, prerequisites and learner
// progress from HCL files and seeds them into the stores.
//
// A curriculum file looks like this:
//
//	lecture "plato" {
//	  label    = "Plato"
//	  category = "ancient"
//	  order    = 1
//	}
//
//	entity "forms" {
//	  label = "Theory of Forms"
//	}
//
//	prerequisite {
//	  dependent  = lecture.plato
//	  requires   = entity.forms
//	  required   = false
//	  importance = 2
//	}
//
//	learner "ada" {
//	  progress = {
//	    "entity.forms" = "MASTERED"
//	  }
//	}
//
// References such as lecture.plato are resolved against every lecture and
// entity declared in any of the loaded files, so blocks may be split across
// files freely.
package curriculum
