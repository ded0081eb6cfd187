// Package domain holds the numeric exercises: stencil smoothing of pixel
// arrays, descriptive statistics over the Irish wind dataset, and the
// slicing and broadcasting rules the other two are built on.
//
// # Grids
//
// A [Grid] is a row-major 2D float64 array. Operations never mutate their
// inputs. Zero-sized grids are legal values: smoothing a grid with fewer
// than three rows or columns yields one, and further smoothing keeps it
// empty. Conversion to gonum's mat.Dense is available for non-empty grids.
//
// # 5-point stencil
//
//	0 0 0 0 0
//	0 0 x 0 0
//	0 x x x 0
//	0 0 x 0 0
//	0 0 0 0 0
//
// [Smooth] averages each interior pixel with its four direct neighbours and
// trims one pixel from every border, so n passes via [Refilter] trim 2n
// rows and columns. [Difference] compares a result against the original
// cropped to the same region.
//
// Images decode to one [Grid] per channel with intensities in [0, 1].
//
// # Wind data
//
// Each line of the wind file is:
//
//	YY MM DD RPT VAL ROS KIL SHA BIR DUB CLA MUL CLO BEL MAL
//	61  1  1 15.04 14.96 13.17  9.29 13.96  9.87 13.67 10.25 10.83 12.58 18.50 15.04
//
// Years are two digits in the 1900s; readings are daily average wind speeds
// in knots at twelve stations in Ireland. Rows are assumed to be
// consecutive days, which is what [WindTable.WeeklyStats] relies on.
//
// Source: Haslett, J. and Raftery, A. E. (1989). Space-time Modelling with
// Long-memory Dependence: Assessing Ireland's Wind Power Resource.
// Applied Statistics 38, 1-50.
//
// Standard deviations are population standard deviations (÷n).
//
// # Slicing
//
// [Range] follows [start:stop:step] conventions: negative bounds count from
// the end, out-of-range bounds clamp, and open bounds extend in the
// direction of the step. Selecting with a Range keeps a dimension;
// selecting with a single index ([Grid.RowAt], [Grid.ColAt]) drops it.
package domain
