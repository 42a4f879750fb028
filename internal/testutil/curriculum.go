package testutil

// PhilosophyHCL is a small curriculum shared by integration tests:
// Aristotle and Augustine build on Plato, Augustine also requires Aristotle,
// and the Theory of Forms is recommended reading for Plato. Learner "ada"
// has mastered Plato.
const PhilosophyHCL = `
lecture "plato" {
  label    = "Plato"
  category = "ancient"
  order    = 1
}

lecture "aristotle" {
  label    = "Aristotle"
  category = "ancient"
  order    = 2
}

lecture "augustine" {
  label    = "Augustine"
  category = "medieval"
  order    = 1
}

entity "forms" {
  label    = "Theory of Forms"
  category = "concepts"
  order    = 1
}

prerequisite {
  dependent = lecture.aristotle
  requires  = lecture.plato
}

prerequisite {
  dependent = lecture.augustine
  requires  = lecture.plato
}

prerequisite {
  dependent = lecture.augustine
  requires  = lecture.aristotle
}

prerequisite {
  dependent  = lecture.plato
  requires   = entity.forms
  required   = false
  importance = 2
}

learner "ada" {
  progress = {
    "lecture.plato" = "MASTERED"
  }
}
`
