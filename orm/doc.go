/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* It has a primary key and may possess secondary indexes (1:N).
* Easy queries for one and iteration.

Models are serialized with go-amino binary encoding.
*/
package orm
