// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import "github.com/meridianstake/meridian/metrics"

var (
	metricRecordsCommitted = metrics.LazyLoadCounter("oracle_records_committed_count")
	metricRecordsModified  = metrics.LazyLoadCounter("oracle_records_modified_count")
	metricSanityFailures   = metrics.LazyLoadCounterVec("oracle_sanity_failure_count", []string{"reason"})
	metricPendingUpdate    = metrics.LazyLoadGauge("oracle_pending_update")
	metricNumRecords       = metrics.LazyLoadGauge("oracle_num_records")
)
