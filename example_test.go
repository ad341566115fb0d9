package dragondb_test

import (
	"fmt"
	"time"

	"github.com/stefanak-michal/dragondb"
)

func mustNew(driver string, opts ...dragondb.Option) *dragondb.DB {
	db, err := dragondb.New(dragondb.Config{Driver: driver}, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

func ExampleDB_Parse() {
	db := mustNew("mysql")
	sql, _ := db.Parse("SELECT * FROM %b WHERE id IN %li", "users", []int{1, 2, 3})
	fmt.Println(sql)
	// Output: SELECT * FROM `users` WHERE id IN (1, 2, 3)
}

func ExampleDB_Parse_hash() {
	db := mustNew("mysql")
	sql, _ := db.Parse("UPDATE %b SET %hc WHERE id = %i", "users", dragondb.H("name", "Bob", "age", 42), 7)
	fmt.Println(sql)
	// Output: UPDATE `users` SET `name`='Bob', `age`=42 WHERE id = 7
}

func ExampleDB_Parse_named() {
	db := mustNew("pgx")
	sql, _ := db.Parse("SELECT * FROM %b_table WHERE name = %s_name AND created > %t_since",
		dragondb.Named{
			"table": "users",
			"name":  "O'Neil",
			"since": time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		})
	fmt.Println(sql)
	// Output: SELECT * FROM "users" WHERE name = 'O''Neil' AND created > '2024-05-01 00:00:00'
}

func ExampleDB_Parse_explicitIndex() {
	db := mustNew("sqlite3")
	sql, _ := db.Parse("SELECT %s0 AS a, %s0 AS b, %i1 AS c", "x", 5)
	fmt.Println(sql)
	// Output: SELECT 'x' AS a, 'x' AS b, 5 AS c
}

func ExampleDB_Parse_escaping() {
	db := mustNew("mysql")
	sql, _ := db.Parse("SELECT * FROM t WHERE a = %s AND b LIKE %ss AND c LIKE 'x%%'", `it's \ here`, "50%")
	fmt.Println(sql)
	// Output: SELECT * FROM t WHERE a = 'it\'s \\ here' AND b LIKE '%50\\%%' AND c LIKE 'x%'
}

func ExampleDB_Parse_multiRow() {
	db := mustNew("sqlite3")
	sql, _ := db.Parse("INSERT INTO %b %lb VALUES %ll?", "points", []string{"x", "y"}, [][]any{{1, 2}, {3, nil}})
	fmt.Println(sql)
	// Output: INSERT INTO `points` (`x`, `y`) VALUES (1, 2), (3, NULL)
}

func ExampleNewWhere() {
	db := mustNew("mysql")
	where := dragondb.NewWhere(dragondb.And)
	where.Add("age > %i", 18)
	sub := where.AddClause(dragondb.Or)
	sub.Add("role = %s", "admin")
	sub.Add("role = %s", "owner")
	where.NegateLast()

	sql, _ := db.Parse("SELECT * FROM users WHERE %l", where)
	fmt.Println(sql)
	// Output: SELECT * FROM users WHERE (age > 18) AND ((NOT ((role = 'admin') OR (role = 'owner'))))
}

func ExampleWithParamChar() {
	db := mustNew("mysql", dragondb.WithParamChar(":"))
	sql, _ := db.Parse("SELECT * FROM :b WHERE id = :i AND note = '100%'", "orders", 9)
	fmt.Println(sql)
	// Output: SELECT * FROM `orders` WHERE id = 9 AND note = '100%'
}
