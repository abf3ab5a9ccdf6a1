// Package project manages projects and the devices assigned to them.
package project
