/*
Package views builds the derived mission lists the UI renders.

All builders are pure functions over cached snapshots: they combine the
missions collection and a user's participations into filtered, ordered
lists and never touch the network. Presentation code recomputes them
whenever either underlying cache entry changes (see pkg/events).

Debouncer is the one stateful piece: a cancellable scheduled task that
holds search input for a quiet period, so typing does not recompute on
every keystroke.
*/
package views
