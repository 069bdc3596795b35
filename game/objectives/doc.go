// Package objectives implements the bonus objectives of log2990 games.
//
// Each game draws four distinct objectives from the catalogue. Two of them
// are private: the first goes to the first player id, the second to the
// other. After every placement the tracker rechecks the public objectives
// and the mover's private one. Checked follows the current turn; Done is
// set once, when the points are awarded.
package objectives
