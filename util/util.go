package util

import (
	"reflect"
	"strings"
)

// ToIntf converts a slice or array of a specific type to array of interface{}
func ToIntf(s interface{}) []interface{} {
	v := reflect.ValueOf(s)
	// There is no need to check, we want to panic if it's not slice or array
	intf := make([]interface{}, v.Len())
	for i := 0; i < v.Len(); i++ {
		intf[i] = v.Index(i).Interface()
	}
	return intf
}

// ToLower conerts a slice of strings to lower case
func ToLower(s []string) []string {
	res := make([]string, len(s))
	for i, v := range s {
		res[i] = strings.ToLower(v)
	}
	return res
}

// In checks if val is in s slice
func In(slice interface{}, val interface{}) bool {
	si := ToIntf(slice)
	for _, v := range si {
		if v == val {
			return true
		}
	}
	return false
}

// Remove returns s without any occurrence of val, preserving order
func Remove(s []string, val string) []string {
	res := make([]string, 0, len(s))
	for _, v := range s {
		if v != val {
			res = append(res, v)
		}
	}
	return res
}

// Unique returns s with duplicates dropped, keeping the first occurrence of each value
func Unique(s []string) []string {
	seen := make(map[string]bool, len(s))
	res := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			res = append(res, v)
		}
	}
	return res
}
