// Package dragondb is an SQL template engine and single-connection executor.
/*

SQL Templates

dragondb renders typed placeholders into final SQL text, escaping every
value for the target dialect instead of sending bind parameters:

	%s   quoted string              %ls  list of quoted strings
	%i   integer                    %li  list of integers
	%d   floating point number      %ld  list of numbers
	%b   identifier (`table`)       %lb  list of identifiers
	%l   raw SQL, or a *Where       %ll  list of raw fragments
	%t   timestamp                  %lt  list of timestamps
	%ss  LIKE '%...%' pattern       %?   any scalar value
	%l?  list of any values         %ll? list of value lists
	%hc  `k`=v, `k`=v               %ha  `k`=v AND `k`=v
	%ho  `k`=v OR `k`=v             %%   literal marker

Placeholders take the arguments in order, by explicit index (%s0, %i1) or
by name from a single Named map (%s_name). Positional and named references
can't be mixed in one template.

	db.Parse("SELECT * FROM %b WHERE name = %s AND id IN %li", "users", "O'Neil", []int{1, 2})
	// SELECT * FROM `users` WHERE name = 'O\'Neil' AND id IN (1, 2)

Execution

A DB owns one lazily opened connection. Statements run sequentially,
transactions nest through savepoints when enabled, and hooks observe or
rewrite every statement.
*/
package dragondb
