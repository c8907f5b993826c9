/*
Package pkconvtest provides fake collaborators and model builders that help
testing migration rules without the full catalog.
*/
package pkconvtest
