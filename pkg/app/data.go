package app

import "sort"

// Columns are the column titles of the sample tables.
var Columns = []string{"Name", "City", "State", "Age"}

func user(name, city, state, age string) map[string]any {
	return map[string]any{"name": name, "city": city, "state": state, "age": age}
}

func table(rows ...map[string]any) map[string]any {
	cols := make([]any, len(Columns))
	for i, c := range Columns {
		cols[i] = c
	}
	rs := make([]any, len(rows))
	for i, r := range rows {
		rs[i] = r
	}
	return map[string]any{"columns": cols, "rows": rs}
}

// TableData1 returns the first sample table.
func TableData1() map[string]any {
	return table(
		user("Steve", "Madison", "WI", "36"),
		user("Mike", "Wichita", "KS", "28"),
		user("Annie", "Detroit", "MI", "32"),
	)
}

// TableData2 returns the second sample table.
func TableData2() map[string]any {
	return table(
		user("Jamie", "Las Vegas", "NV", "33"),
		user("Kasie", "Boston", "MA", "27"),
		user("Bonni", "Austin", "TX", "40"),
	)
}

// TableData3 returns the third sample table.
func TableData3() map[string]any {
	return table(
		user("Jose", "Seattle", "WA", "36"),
		user("Kim", "Chicago", "IL", "21"),
		user("John", "Jackson", "MS", "32"),
	)
}

// TableData returns the table the app starts with.
func TableData() map[string]any {
	return TableData1()
}

// FormData returns an empty user record.
func FormData() map[string]any {
	return user("", "", "", "")
}

// DefaultState returns the initial app state.
func DefaultState() map[string]any {
	return State(TableData())
}

// State returns an app state over the given table and an empty form.
func State(tableData map[string]any) map[string]any {
	return map[string]any{"tableData": tableData, "formData": FormData()}
}

// datasets are the tables selectable by name.
var datasets = map[string]func() map[string]any{
	"table":  TableData,
	"table1": TableData1,
	"table2": TableData2,
	"table3": TableData3,
}

// Dataset returns the named sample table.
func Dataset(name string) (map[string]any, bool) {
	fn, ok := datasets[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// DatasetNames returns the selectable table names in order.
func DatasetNames() []string {
	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewUser returns a user record for appending to the table.
func NewUser(name, city, state, age string) map[string]any {
	return user(name, city, state, age)
}
