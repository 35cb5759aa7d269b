// Package testsupport provides fixtures shared by package and command tests:
// throwaway configs, manifest files and the files they point at.
package testsupport
