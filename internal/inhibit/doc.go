// Package inhibit turns matched activation arrows into inhibition markers.
//
// Synthesize computes, from an arrow's minimum-area rectangle and its
// annotated head box, where the flat "T" tick of an inhibit arrow goes and
// which box should be annotated around it. Compositor erases the arrows from
// the diagram and draws the markers with a random colour and thickness.
package inhibit
