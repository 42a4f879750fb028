package duckdbstore

// SchemaSQL creates every table the store needs. It is idempotent.
const SchemaSQL = `
CREATE SEQUENCE IF NOT EXISTS edge_seq START 1;

CREATE TABLE IF NOT EXISTS nodes (
  node_id   VARCHAR PRIMARY KEY,
  label     VARCHAR NOT NULL DEFAULT '',
  category  VARCHAR NOT NULL DEFAULT '',
  ord       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS edges (
  edge_id       VARCHAR PRIMARY KEY,
  seq           BIGINT NOT NULL DEFAULT nextval('edge_seq'),
  dependent     VARCHAR NOT NULL,
  prerequisite  VARCHAR NOT NULL,
  required      BOOLEAN NOT NULL,
  importance    INTEGER NOT NULL,
  UNIQUE(dependent, prerequisite)
);

CREATE TABLE IF NOT EXISTS learners (
  learner_id  VARCHAR PRIMARY KEY,
  created_at  TIMESTAMP NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS progress (
  learner_id  VARCHAR NOT NULL,
  node_id     VARCHAR NOT NULL,
  state       VARCHAR NOT NULL,
  PRIMARY KEY (learner_id, node_id)
);
`
