package restoreheight

// mainnetTable holds one (height, timestamp) sample per calendar month,
// taken at 00:00 UTC on the first day of the month.
var mainnetTable = []Entry{
	{18844, 1398902400000},   // 2014-05-01
	{65406, 1401580800000},   // 2014-06-01
	{108882, 1404172800000},  // 2014-07-01
	{153594, 1406851200000},  // 2014-08-01
	{198072, 1409529600000},  // 2014-09-01
	{241088, 1412121600000},  // 2014-10-01
	{285305, 1414800000000},  // 2014-11-01
	{328069, 1417392000000},  // 2014-12-01
	{372369, 1420070400000},  // 2015-01-01
	{416505, 1422748800000},  // 2015-02-01
	{456631, 1425168000000},  // 2015-03-01
	{501084, 1427846400000},  // 2015-04-01
	{543973, 1430438400000},  // 2015-05-01
	{588326, 1433116800000},  // 2015-06-01
	{631187, 1435708800000},  // 2015-07-01
	{675484, 1438387200000},  // 2015-08-01
	{719725, 1441065600000},  // 2015-09-01
	{762463, 1443657600000},  // 2015-10-01
	{806528, 1446336000000},  // 2015-11-01
	{849041, 1448928000000},  // 2015-12-01
	{892866, 1451606400000},  // 2016-01-01
	{936736, 1454284800000},  // 2016-02-01
	{977691, 1456790400000},  // 2016-03-01
	{1015848, 1459468800000}, // 2016-04-01
	{1037417, 1462060800000}, // 2016-05-01
	{1059651, 1464739200000}, // 2016-06-01
	{1081269, 1467331200000}, // 2016-07-01
	{1103630, 1470009600000}, // 2016-08-01
	{1125983, 1472688000000}, // 2016-09-01
	{1147617, 1475280000000}, // 2016-10-01
	{1169779, 1477958400000}, // 2016-11-01
	{1191402, 1480550400000}, // 2016-12-01
	{1213861, 1483228800000}, // 2017-01-01
	{1236197, 1485907200000}, // 2017-02-01
	{1256209, 1488326400000}, // 2017-03-01
	{1278486, 1491004800000}, // 2017-04-01
	{1300050, 1493596800000}, // 2017-05-01
	{1322397, 1496275200000}, // 2017-06-01
	{1343989, 1498867200000}, // 2017-07-01
	{1366307, 1501545600000}, // 2017-08-01
	{1388663, 1504224000000}, // 2017-09-01
	{1410318, 1506816000000}, // 2017-10-01
	{1432660, 1509494400000}, // 2017-11-01
	{1454258, 1512086400000}, // 2017-12-01
	{1476655, 1514764800000}, // 2018-01-01
	{1498900, 1517443200000}, // 2018-02-01
	{1518920, 1519862400000}, // 2018-03-01
	{1541284, 1522540800000}, // 2018-04-01
	{1562882, 1525132800000}, // 2018-05-01
	{1585079, 1527811200000}, // 2018-06-01
	{1606526, 1530403200000}, // 2018-07-01
	{1628723, 1533081600000}, // 2018-08-01
	{1651081, 1535760000000}, // 2018-09-01
	{1672493, 1538352000000}, // 2018-10-01
	{1694852, 1541030400000}, // 2018-11-01
	{1716439, 1543622400000}, // 2018-12-01
	{1738888, 1546300800000}, // 2019-01-01
	{1761149, 1548979200000}, // 2019-02-01
	{1781285, 1551398400000}, // 2019-03-01
	{1803443, 1554076800000}, // 2019-04-01
	{1825073, 1556668800000}, // 2019-05-01
	{1847392, 1559347200000}, // 2019-06-01
	{1868977, 1561939200000}, // 2019-07-01
	{1891277, 1564617600000}, // 2019-08-01
	{1913640, 1567296000000}, // 2019-09-01
	{1935129, 1569888000000}, // 2019-10-01
	{1957459, 1572566400000}, // 2019-11-01
	{1979051, 1575158400000}, // 2019-12-01
	{2001370, 1577836800000}, // 2020-01-01
	{2023693, 1580515200000}, // 2020-02-01
	{2044520, 1583020800000}, // 2020-03-01
	{2066842, 1585699200000}, // 2020-04-01
	{2088495, 1588291200000}, // 2020-05-01
	{2110795, 1590969600000}, // 2020-06-01
	{2132411, 1593561600000}, // 2020-07-01
	{2154750, 1596240000000}, // 2020-08-01
	{2177077, 1598918400000}, // 2020-09-01
	{2198640, 1601510400000}, // 2020-10-01
	{2220960, 1604188800000}, // 2020-11-01
	{2242564, 1606780800000}, // 2020-12-01
	{2264859, 1609459200000}, // 2021-01-01
	{2287167, 1612137600000}, // 2021-02-01
	{2307324, 1614556800000}, // 2021-03-01
	{2329635, 1617235200000}, // 2021-04-01
	{2351235, 1619827200000}, // 2021-05-01
	{2373549, 1622505600000}, // 2021-06-01
	{2395137, 1625097600000}, // 2021-07-01
	{2417454, 1627776000000}, // 2021-08-01
	{2439765, 1630454400000}, // 2021-09-01
	{2461365, 1633046400000}, // 2021-10-01
	{2483679, 1635724800000}, // 2021-11-01
	{2505267, 1638316800000}, // 2021-12-01
	{2527581, 1640995200000}, // 2022-01-01
	{2549889, 1643673600000}, // 2022-02-01
	{2570046, 1646092800000}, // 2022-03-01
	{2592357, 1648771200000}, // 2022-04-01
	{2613957, 1651363200000}, // 2022-05-01
	{2636271, 1654041600000}, // 2022-06-01
	{2657859, 1656633600000}, // 2022-07-01
	{2680176, 1659312000000}, // 2022-08-01
	{2702487, 1661990400000}, // 2022-09-01
	{2724087, 1664582400000}, // 2022-10-01
	{2746401, 1667260800000}, // 2022-11-01
	{2767989, 1669852800000}, // 2022-12-01
	{2790303, 1672531200000}, // 2023-01-01
	{2812611, 1675209600000}, // 2023-02-01
	{2832768, 1677628800000}, // 2023-03-01
	{2855079, 1680307200000}, // 2023-04-01
	{2876679, 1682899200000}, // 2023-05-01
	{2898993, 1685577600000}, // 2023-06-01
	{2920581, 1688169600000}, // 2023-07-01
	{2942898, 1690848000000}, // 2023-08-01
	{2965209, 1693526400000}, // 2023-09-01
	{2986809, 1696118400000}, // 2023-10-01
	{3009123, 1698796800000}, // 2023-11-01
	{3030711, 1701388800000}, // 2023-12-01
	{3053025, 1704067200000}, // 2024-01-01
	{3075333, 1706745600000}, // 2024-02-01
	{3096210, 1709251200000}, // 2024-03-01
	{3118521, 1711929600000}, // 2024-04-01
	{3140121, 1714521600000}, // 2024-05-01
	{3162435, 1717200000000}, // 2024-06-01
	{3184023, 1719792000000}, // 2024-07-01
	{3206340, 1722470400000}, // 2024-08-01
	{3228651, 1725148800000}, // 2024-09-01
	{3250251, 1727740800000}, // 2024-10-01
	{3272565, 1730419200000}, // 2024-11-01
	{3294153, 1733011200000}, // 2024-12-01
	{3316467, 1735689600000}, // 2025-01-01
}

// testnetTable and stagenetTable only record when each chain started.
// Later dates are extrapolated at BlockTime.
var testnetTable = []Entry{
	{1, 1397818193000}, // 2014-04-18
}

var stagenetTable = []Entry{
	{1, 1519862400000}, // 2018-03-01
}
