// Package prompt asks an operator how to resolve a document the strategy
// could not decide.
//
// The operator sees each document version with the number of nodes holding
// it and answers one line at a time. Each line is parsed into a Command;
// the Resolver is a small state machine over those commands, with a
// separate confirmation state entered by delete and r<version>.
package prompt
