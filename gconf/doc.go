/*
Package gconf loads validated configuration.

Configuration is read with viper from a file, the environment and command
line flags. A section is decoded into a struct implementing Configuration and
validated before it is returned. A configuration that cannot be loaded or
does not validate is a critical condition: the program must be configured
correctly before it can do any work.
*/
package gconf
