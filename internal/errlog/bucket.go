package errlog

import "github.com/iancoleman/strcase"

// Bucket groups related kinds for --show-buckets reporting: memory vs.
// file vs. lock vs. ARC leaks are one taxonomy entry (// "Leak (Memory/File/Lock/ARC-bucketed)") but get reported under distinct
// bucket tags so downstream tooling can filter per resource family.
func Bucket(k Kind) string {
	switch k {
	case KindLeakMemory:
		return "memory"
	case KindLeakFile:
		return "file"
	case KindLeakLock:
		return "lock"
	case KindLeakARC:
		return "arc"
	case KindParameterNotNullChecked:
		return "parameter_not_null_checked"
	case KindFieldNotNullChecked:
		return "field_not_null_checked"
	case KindArrayOutOfBoundsL1, KindArrayOutOfBoundsL2, KindArrayOutOfBoundsL3:
		return "array_out_of_bounds"
	default:
		return strcase.ToSnake(k.String())
	}
}
