// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package node provides the format-agnostic domain model of the course graph.
//
// # Core Concepts
//
//   - Node: a lecture or a philosophical entity, identified by a
//     nodeid.Address such as "lecture.plato". Nodes carry display data only;
//     the engine never creates them, it reads them from a store.
//
//   - Edge: a directed prerequisite relation. "Dependent requires
//     Prerequisite". Required edges gate availability, recommended ones only
//     add to the readiness score. Importance is editorial metadata in 1..5.
//
// Why a separate node package?
//
// Stores, the curriculum loader and the graph algorithms all exchange these
// types. Keeping them here means none of those layers depends on how another
// one represents a node, and Edge.Validate is the single place the
// graph-independent edge invariants live.
package node
